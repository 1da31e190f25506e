package email

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type sent struct {
	from string
	to   []string
	raw  string
}

func recorder(out *[]sent, fail error) func(msgs ...*gomail.Message) error {
	sender := gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		if fail != nil {
			return fail
		}
		var buf bytes.Buffer
		if _, err := msg.WriteTo(&buf); err != nil {
			return err
		}
		*out = append(*out, sent{from: from, to: to, raw: buf.String()})
		return nil
	})
	return func(msgs ...*gomail.Message) error {
		return gomail.Send(sender, msgs...)
	}
}

func TestSendCustom(t *testing.T) {
	var out []sent
	svc := newSMTPService(Config{Username: "scheduler@umn.edu"}, recorder(&out, nil), nil)

	require.NoError(t, svc.SendCustom(context.Background(), "dr@umn.edu", "Patient in OR: Jane", "Jane has been sent to the operating room."))

	require.Len(t, out, 1)
	assert.Equal(t, "scheduler@umn.edu", out[0].from)
	assert.Equal(t, []string{"dr@umn.edu"}, out[0].to)
	assert.Contains(t, out[0].raw, "Subject: Patient in OR: Jane")
	assert.Contains(t, out[0].raw, "text/plain")
}

func TestSendInvite(t *testing.T) {
	var out []sent
	svc := newSMTPService(Config{Username: "scheduler@umn.edu", From: "or@umn.edu", InvitesEnabled: true}, recorder(&out, nil), nil)

	ok, err := svc.SendInvite(context.Background(), &Invite{
		To:      "chief@umn.edu",
		Cc:      []string{"a@umn.edu", "b@umn.edu"},
		Subject: "Meeting Scheduled: M&M",
		Body:    "M&M",
		ICS:     []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, out, 1)
	assert.Equal(t, "or@umn.edu", out[0].from)
	assert.ElementsMatch(t, []string{"chief@umn.edu", "a@umn.edu", "b@umn.edu"}, out[0].to)
	assert.Contains(t, out[0].raw, "text/calendar; method=REQUEST")
	assert.Contains(t, out[0].raw, `filename="invite.ics"`)
}

func TestSendInviteDisabled(t *testing.T) {
	var out []sent
	svc := newSMTPService(Config{Username: "u"}, recorder(&out, nil), nil)

	ok, err := svc.SendInvite(context.Background(), &Invite{To: "x@umn.edu"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestSendFailureIsWrapped(t *testing.T) {
	var out []sent
	boom := errors.New("535 auth failed")
	svc := newSMTPService(Config{Username: "u", From: "scheduler@umn.edu", InvitesEnabled: true}, recorder(&out, boom), nil)

	err := svc.SendCustom(context.Background(), "x@umn.edu", "s", "b")
	assert.ErrorIs(t, err, boom)

	ok, err := svc.SendInvite(context.Background(), &Invite{To: "x@umn.edu"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestNewServiceWithoutCredentials(t *testing.T) {
	svc := NewService(Config{Host: "smtp.gmail.com"}, nil)
	assert.False(t, svc.Enabled())
	assert.ErrorIs(t, svc.SendCustom(context.Background(), "x", "s", "b"), ErrNotConfigured)
}
