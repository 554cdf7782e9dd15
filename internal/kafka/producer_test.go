package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProducer_CheckConnectionWithoutBrokers(t *testing.T) {
	p := NewProducer(nil)
	defer p.Close()

	err := p.CheckConnection(context.Background())
	assert.EqualError(t, err, "no kafka brokers configured")
}

func TestProducer_PublishRejectsUnmarshalablePayload(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"})
	defer p.Close()

	err := p.Publish(context.Background(), "reservations", "BKG-1", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal payload")
}

func TestProducer_PublishFailsWhenBrokerDown(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := p.Publish(ctx, "reservations", "BKG-1", map[string]string{"type": "reservation_created"})
	assert.Error(t, err)
}
