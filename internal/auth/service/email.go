package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/mambasports/team-service/internal/model"
	"github.com/mambasports/team-service/pkg/mail"
	"github.com/mambasports/team-service/pkg/metrics"
)

//go:embed templates/*.html
var emailTemplates embed.FS

var mailTemplates = template.Must(template.ParseFS(emailTemplates, "templates/*.html"))

type mailSpec struct {
	subject  string
	template string
}

var mailSpecs = map[model.MailKind]mailSpec{
	model.MailKindVerification:  {"Verify Your Email Address", "verification_email_template.html"},
	model.MailKindPasswordReset: {"Password Reset Code", "password_reset_email_template.html"},
}

// RenderMail returns the subject and HTML body for job.
func RenderMail(job model.MailJob, ttl time.Duration) (string, string, error) {
	spec, ok := mailSpecs[job.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown mail kind %q", job.Kind)
	}

	data := struct {
		Code      string
		ExpiresIn string
	}{Code: job.Code, ExpiresIn: humanMinutes(ttl)}

	var htmlBody bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&htmlBody, spec.template, data); err != nil {
		return "", "", err
	}
	return spec.subject, htmlBody.String(), nil
}

func humanMinutes(d time.Duration) string {
	m := int(d.Minutes())
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

// SendMailJob renders and sends job through mailer.
func SendMailJob(ctx context.Context, mailer mail.Mailer, job model.MailJob, ttl time.Duration) error {
	subject, body, err := RenderMail(job, ttl)
	if err != nil {
		return err
	}
	if err := mailer.SendHTMLEmail(ctx, job.Email, subject, body); err != nil {
		metrics.MailDeliveriesTotal.WithLabelValues(string(job.Kind), metrics.OutcomeFailure).Inc()
		return err
	}
	metrics.MailDeliveriesTotal.WithLabelValues(string(job.Kind), metrics.OutcomeSuccess).Inc()
	return nil
}

// DirectDispatcher sends mail inline with the request.
type DirectDispatcher struct {
	mailer mail.Mailer
	ttl    time.Duration
}

func NewDirectDispatcher(mailer mail.Mailer, ttl time.Duration) *DirectDispatcher {
	return &DirectDispatcher{mailer: mailer, ttl: ttl}
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, job model.MailJob) error {
	return SendMailJob(ctx, d.mailer, job, d.ttl)
}
