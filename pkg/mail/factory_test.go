package mail

import (
	"context"
	"testing"

	"github.com/mambasports/team-service/internal/configs"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewMailerServiceSelectsProvider(t *testing.T) {
	cfg := &configs.Config{}
	cfg.Mail.Provider = configs.MailProviderResend
	cfg.Mail.ResendAPIKey = "re_test"
	cfg.Mail.SenderEmail = "noreply@mamba.test"

	assert.IsType(t, &ResendMailService{}, NewMailerService(cfg, zap.NewNop()))

	cfg.Mail.Provider = configs.MailProviderSMTP
	cfg.Mail.SMTPHost = "localhost"
	cfg.Mail.SMTPPort = 2525
	assert.IsType(t, &SMTPMailService{}, NewMailerService(cfg, zap.NewNop()))
}

func TestSMTPSendHonoursCancelledContext(t *testing.T) {
	s := NewSMTPMailService("127.0.0.1", 1, "", "", "noreply@mamba.test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SendHTMLEmail(ctx, "alice@x.com", "subject", "<p>hi</p>")
	assert.ErrorIs(t, err, context.Canceled)
}
