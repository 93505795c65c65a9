package mail

import (
	"fmt"

	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Service delivers security alert mail (account lockouts, token reuse).
// Delivery is best-effort: the security control is the database
// side effect, the mail is operator notification only.
type Service struct {
	config *config.MailConfig
	client *mail.Client
	logger *logging.Service
}

func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	if !cfg.Enabled {
		logger.Info("mail service disabled, security alerts will be log-only")
		return &Service{config: cfg, logger: logger}, nil
	}

	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("CLIENTHUB_MAIL_FROM_ADDRESS is required when mail is enabled")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "tls", "starttls":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	logger.Info("mail service initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("from_address", cfg.FromAddress))

	return &Service{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

// SendSecurityAlert mails the configured operator address. Returns nil when
// mail is disabled or no alert address is configured.
func (s *Service) SendSecurityAlert(subject, body string) error {
	if s.client == nil || s.config.SecurityAlert == "" {
		s.logger.Info("security alert (mail disabled)",
			zap.String("subject", subject))
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(s.config.FromName, s.config.FromAddress); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(s.config.SecurityAlert); err != nil {
		return fmt.Errorf("invalid alert address: %w", err)
	}

	msg.Subject(fmt.Sprintf("[%s] %s", "Client Hub Security", subject))
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send security alert: %w", err)
	}

	s.logger.Info("security alert sent",
		zap.String("subject", subject))

	return nil
}
