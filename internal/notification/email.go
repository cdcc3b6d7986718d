package notification

import (
    "context"
    "fmt"

    "github.com/sendgrid/sendgrid-go"
    "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender is the offline delivery channel
type EmailSender interface {
    SendEmail(ctx context.Context, to, subject, plainText, htmlContent string) error
}

// SendGridSender implements EmailSender using SendGrid
type SendGridSender struct {
    apiKey   string
    from     string
    fromName string
}

func NewSendGridSender(apiKey, from string) *SendGridSender {
    return &SendGridSender{
        apiKey:   apiKey,
        from:     from,
        fromName: "Amoura",
    }
}

func (s *SendGridSender) SendEmail(ctx context.Context, to, subject, plainText, htmlContent string) error {
    fromEmail := mail.NewEmail(s.fromName, s.from)
    toEmail := mail.NewEmail("", to)

    if htmlContent == "" {
        htmlContent = plainText
    }
    message := mail.NewSingleEmail(fromEmail, subject, toEmail, plainText, htmlContent)

    client := sendgrid.NewSendClient(s.apiKey)
    response, err := client.Send(message)
    if err != nil {
        return fmt.Errorf("failed to send email: %w", err)
    }
    if response.StatusCode >= 400 {
        return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
    }

    return nil
}
