package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

const inviteFilename = "invite.ics"

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// InvitesEnabled gates SendInvite; plain notifications are unaffected.
	InvitesEnabled bool
}

func (c Config) sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

// SMTPService delivers mail with gomail over STARTTLS.
type SMTPService struct {
	cfg    Config
	send   func(msgs ...*gomail.Message) error
	logger *zerolog.Logger
}

func NewSMTPService(cfg Config, logger *zerolog.Logger) *SMTPService {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return newSMTPService(cfg, dialer.DialAndSend, logger)
}

// NewService picks the SMTP implementation when credentials are present.
func NewService(cfg Config, logger *zerolog.Logger) Service {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return Disabled{}
	}
	return NewSMTPService(cfg, logger)
}

func newSMTPService(cfg Config, send func(msgs ...*gomail.Message) error, logger *zerolog.Logger) *SMTPService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &SMTPService{cfg: cfg, send: send, logger: logger}
}

func (s *SMTPService) Enabled() bool { return true }

func (s *SMTPService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.sender())
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

func (s *SMTPService) SendInvite(ctx context.Context, invite *Invite) (bool, error) {
	if !s.cfg.InvitesEnabled {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.sender())
	m.SetHeader("To", invite.To)
	if len(invite.Cc) > 0 {
		m.SetHeader("Cc", invite.Cc...)
	}
	m.SetHeader("Subject", invite.Subject)
	m.SetBody("text/plain", invite.Body)

	ics := invite.ICS
	m.Attach(inviteFilename,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(ics)
			return err
		}),
		gomail.SetHeader(map[string][]string{
			"Content-Type": {`text/calendar; method=REQUEST; name="` + inviteFilename + `"`},
		}),
	)

	if err := s.send(m); err != nil {
		return false, fmt.Errorf("failed to send invite to %s: %w", invite.To, err)
	}
	s.logger.Debug().
		Str("to", invite.To).
		Strs("cc", invite.Cc).
		Str("subject", invite.Subject).
		Msg("Calendar invite sent")
	return true, nil
}
