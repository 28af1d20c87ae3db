package paystack

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const apiBaseURL = "https://api.paystack.co"

type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(secretKey string) *Client {
	return NewClientWithBaseURL(secretKey, apiBaseURL)
}

// NewClientWithBaseURL testler ve self-hosted gateway'ler için.
func NewClientWithBaseURL(secretKey, baseURL string) *Client {
	return &Client{
		secretKey:  secretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // kobo
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitializeTransaction ödeme sağlayıcıdan redirect URL alır. Başarısızlık
// pending placeholder dışında hiçbir state bırakmaz; çağıran kayıt yazmadan
// önce bu fonksiyonu çağırmamalıdır.
func (c *Client) InitializeTransaction(email string, amount int64, reference, callbackURL string) (string, error) {
	reqBody := initializeRequest{
		Email:       email,
		Amount:      amount,
		Reference:   reference,
		CallbackURL: callbackURL,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling transaction request: %v", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/transaction/initialize", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error calling paystack: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading paystack response: %v", err)
	}

	var result initializeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing paystack response: %v", err)
	}

	if !result.Status {
		log.Printf("Paystack initialize failed: status %d, body: %s", resp.StatusCode, string(respBody))
		return "", fmt.Errorf("paystack error: %s", result.Message)
	}

	return result.Data.AuthorizationURL, nil
}

// WebhookEvent sağlayıcının gönderdiği olay gövdesi.
type WebhookEvent struct {
	Event string `json:"event"` // charge.success, charge.failed
	Data  struct {
		ID        int64  `json:"id"`
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
		Status    string `json:"status"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// VerifyWebhookSignature header'daki imzayı ham gövde üzerinden HMAC-SHA512
// ile yeniden hesaplayıp sabit zamanlı karşılaştırır.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
