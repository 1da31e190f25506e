package email

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by SendCustom when no SMTP credentials are set.
var ErrNotConfigured = errors.New("smtp not configured")

// Invite is a message carrying an iCalendar REQUEST attachment.
type Invite struct {
	To      string
	Cc      []string
	Subject string
	Body    string
	ICS     []byte
}

type Service interface {
	SendCustom(ctx context.Context, to string, subject string, content string) error
	// SendInvite reports false without error when invites are switched off.
	SendInvite(ctx context.Context, invite *Invite) (bool, error)
	Enabled() bool
}

// Disabled drops every message. It is used when SMTP is unconfigured.
type Disabled struct{}

func (Disabled) SendCustom(context.Context, string, string, string) error {
	return ErrNotConfigured
}

func (Disabled) SendInvite(context.Context, *Invite) (bool, error) {
	return false, nil
}

func (Disabled) Enabled() bool { return false }
