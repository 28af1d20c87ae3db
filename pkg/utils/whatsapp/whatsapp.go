package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultTemplate kabul edilen teklif için müşteri adına hazırlanan mesaj.
const DefaultTemplate = "Hi %s! I accepted your proposal for \"%s\" on LensLink. Let's discuss the details."

// BuildContactLink telefon numarasından deterministik bir wa.me linki üretir.
// Baştaki "+" atılır, numaradaki boşluk ve tireler temizlenir, mesaj gövdesi
// yüzde kodlanır. Harici çağrı yok, saf string üretimi.
func BuildContactLink(phone, message string) string {
	number := strings.TrimPrefix(strings.TrimSpace(phone), "+")
	number = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(number)
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(message))
}

// BuildAcceptanceMessage şablonu creative adı ve talep başlığıyla doldurur.
func BuildAcceptanceMessage(creativeName, requestTitle string) string {
	return fmt.Sprintf(DefaultTemplate, creativeName, requestTitle)
}
