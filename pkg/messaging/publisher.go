package messaging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Publisher sends typed events to one channel and never fails the caller.
type Publisher struct {
	broker  Broker
	channel string
	logger  *zerolog.Logger
	onError func(channel string, err error)
	now     func() time.Time
}

func NewPublisher(broker Broker, channel string, logger *zerolog.Logger) *Publisher {
	if broker == nil {
		broker = NopBroker{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Publisher{broker: broker, channel: channel, logger: logger, now: time.Now}
}

// OnError registers a hook called for every failed publish, e.g. a metrics counter.
func (p *Publisher) OnError(fn func(channel string, err error)) *Publisher {
	p.onError = fn
	return p
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payload interface{}) {
	msg := Message{Type: eventType, Payload: payload, OccurredAt: p.now().UTC()}
	if err := p.broker.Publish(ctx, p.channel, msg); err != nil {
		p.logger.Warn().Err(err).
			Str("channel", p.channel).
			Str("event_type", eventType).
			Msg("Failed to publish event")
		if p.onError != nil {
			p.onError(p.channel, err)
		}
	}
}
