package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingBroker struct {
	NopBroker
	channels []string
	messages []Message
	err      error
}

func (b *recordingBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.channels = append(b.channels, channel)
	b.messages = append(b.messages, message.(Message))
	return b.err
}

func TestPublisherWrapsPayload(t *testing.T) {
	b := &recordingBroker{}
	p := NewPublisher(b, ChannelPatientLifecycle, nil)

	p.Publish(context.Background(), "archived", map[string]string{"mrn": "M1"})

	assert.Equal(t, []string{ChannelPatientLifecycle}, b.channels)
	assert.Equal(t, "archived", b.messages[0].Type)
	assert.False(t, b.messages[0].OccurredAt.IsZero())
}

func TestPublisherSwallowsErrors(t *testing.T) {
	b := &recordingBroker{err: errors.New("redis down")}
	var failed []string
	p := NewPublisher(b, ChannelNotifications, nil).OnError(func(channel string, _ error) {
		failed = append(failed, channel)
	})

	p.Publish(context.Background(), "notification.created", nil)
	assert.Equal(t, []string{ChannelNotifications}, failed)
}
