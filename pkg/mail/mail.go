package mail

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	SendPlainTextEmail(ctx context.Context, recipientEmail, subject, body string) error
	SendHTMLEmail(ctx context.Context, recipientEmail, subject, htmlBody string) error
}

type SMTPMailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewSMTPMailService(host string, port int, username, password, from string) *SMTPMailService {
	return &SMTPMailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: from,
	}
}

func (s *SMTPMailService) message(recipientEmail, subject, contentType, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", recipientEmail)
	m.SetHeader("Subject", subject)
	m.SetBody(contentType, body)
	return m
}

// send runs DialAndSend off the caller's goroutine so ctx cancellation is
// honoured; gomail itself has no context support.
func (s *SMTPMailService) send(ctx context.Context, m *gomail.Message) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return fmt.Errorf("email sending canceled: %w", ctx.Err())
	}
}

func (s *SMTPMailService) SendPlainTextEmail(ctx context.Context, recipientEmail, subject, body string) error {
	if err := s.send(ctx, s.message(recipientEmail, subject, "text/plain", body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *SMTPMailService) SendHTMLEmail(ctx context.Context, recipientEmail, subject, htmlBody string) error {
	if err := s.send(ctx, s.message(recipientEmail, subject, "text/html", htmlBody)); err != nil {
		return fmt.Errorf("failed to send HTML email: %w", err)
	}
	return nil
}
