package mail

import (
	"github.com/mambasports/team-service/internal/configs"
	"go.uber.org/zap"
)

func NewMailerService(cfg *configs.Config, log *zap.Logger) Mailer {
	switch cfg.Mail.Provider {
	case configs.MailProviderResend:
		log.Info("initializing Resend mail service", zap.String("env", cfg.App.Env))
		return NewResendMailService(cfg.Mail.ResendAPIKey, cfg.Mail.SenderEmail)
	default:
		log.Info("initializing SMTP mail service",
			zap.String("env", cfg.App.Env),
			zap.String("host", cfg.Mail.SMTPHost),
			zap.Int("port", cfg.Mail.SMTPPort),
		)
		return NewSMTPMailService(
			cfg.Mail.SMTPHost,
			cfg.Mail.SMTPPort,
			cfg.Mail.SMTPUsername,
			cfg.Mail.SMTPPassword,
			cfg.Mail.SenderEmail,
		)
	}
}
