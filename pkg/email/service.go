package email

// GlobalEmailService başlatılmamışsa nil kalır; e-posta her akışta
// opsiyoneldir ve çağıranlar göndermeden önce nil kontrolü yapar.
var GlobalEmailService *EmailService

func InitEmailService(apiKey string) error {
	service, err := NewEmailService(apiKey)
	if err != nil {
		return err
	}
	GlobalEmailService = service
	return nil
}
