package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type WelcomeEmailData struct {
	Name string
}

type ProposalReceivedData struct {
	RequestTitle  string
	CreativeName  string
	QuoteAmount   float64
	QuoteCurrency string
}

type ProposalAcceptedData struct {
	CreativeName string
	RequestTitle string
	ClientName   string
}

type SubscriptionActivatedData struct {
	Name              string
	PlanName          string
	Period            string
	ProposalsPerMonth int
	ActiveRequests    int
	ExpiresAt         *time.Time
}

type SubscriptionCancelledData struct {
	Name      string
	PlanName  string
	ExpiresAt time.Time
}

type SubscriptionExpiryWarningData struct {
	Name       string
	PlanName   string
	DaysLeft   int
	ExpiryDate time.Time
}

func NewEmailService(apiKey string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      "LensLink <noreply@lenslink.africa>",
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}

	emailData := EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("Resend API error: status %d, body: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	return nil
}

// Email sending methods
func (s *EmailService) SendWelcomeEmail(email, name string) error {
	data := WelcomeEmailData{
		Name: name,
	}
	return s.sendTemplateEmail(email, "Welcome to LensLink! 🎉", "welcome.html", data)
}

func (s *EmailService) SendProposalReceivedEmail(
	clientEmail, requestTitle, creativeName string,
	quoteAmount float64, quoteCurrency string,
) error {
	data := ProposalReceivedData{
		RequestTitle:  requestTitle,
		CreativeName:  creativeName,
		QuoteAmount:   quoteAmount,
		QuoteCurrency: quoteCurrency,
	}
	return s.sendTemplateEmail(clientEmail, "New Proposal for Your Request! 📸", "proposal_received.html", data)
}

func (s *EmailService) SendProposalAcceptedEmail(creativeEmail, creativeName, requestTitle, clientName string) error {
	data := ProposalAcceptedData{
		CreativeName: creativeName,
		RequestTitle: requestTitle,
		ClientName:   clientName,
	}
	return s.sendTemplateEmail(creativeEmail, "Your Proposal Was Accepted! 🎉", "proposal_accepted.html", data)
}

func (s *EmailService) SendSubscriptionActivatedEmail(
	email, name, planName, period string,
	proposalsPerMonth, activeRequests int,
	expiresAt *time.Time,
) error {
	data := SubscriptionActivatedData{
		Name:              name,
		PlanName:          planName,
		Period:            period,
		ProposalsPerMonth: proposalsPerMonth,
		ActiveRequests:    activeRequests,
		ExpiresAt:         expiresAt,
	}
	return s.sendTemplateEmail(email, "Your LensLink Subscription Is Active! ✅", "subscription_activated.html", data)
}

func (s *EmailService) SendSubscriptionCancelledEmail(email, name, planName string, expiresAt time.Time) error {
	data := SubscriptionCancelledData{
		Name:      name,
		PlanName:  planName,
		ExpiresAt: expiresAt,
	}
	return s.sendTemplateEmail(email, "Your Subscription Has Been Cancelled", "subscription_cancelled.html", data)
}

func (s *EmailService) SendSubscriptionExpiryWarning(
	email, name, planName string,
	expiryDate time.Time,
	daysLeft int,
) error {
	data := SubscriptionExpiryWarningData{
		Name:       name,
		PlanName:   planName,
		DaysLeft:   daysLeft,
		ExpiryDate: expiryDate,
	}
	return s.sendTemplateEmail(
		email,
		fmt.Sprintf("Your Subscription Expires in %d Days ⚠️", daysLeft),
		"subscription_expiry_warning.html",
		data,
	)
}
