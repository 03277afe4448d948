package eventpublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
)

func TestBreakerPublisherOpensAfterConsecutiveFailures(t *testing.T) {
	boom := errors.New("broker down")
	next := &stubPublisher{errorsByID: map[string]error{"evt": boom}}
	p := NewBreakerPublisher(next, BreakerConfig{ConsecutiveFailures: 2, OpenTimeout: time.Minute}, zerolog.Nop())
	event := &domain.OutboxEvent{ID: "evt"}

	for i := 0; i < 2; i++ {
		err := p.Publish(context.Background(), event)
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, p.State())

	err := p.Publish(context.Background(), event)
	require.ErrorIs(t, err, ErrPublisherUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, next.calls, "open breaker must not call through")
}

func TestBreakerPublisherPassesThroughSuccess(t *testing.T) {
	next := &stubPublisher{}
	p := NewBreakerPublisher(next, DefaultBreakerConfig(), zerolog.Nop())

	require.NoError(t, p.Publish(context.Background(), &domain.OutboxEvent{ID: "evt"}))
	assert.Len(t, next.published, 1)
	assert.Equal(t, gobreaker.StateClosed, p.State())
}

func TestBreakerPublisherHalfOpenRecovers(t *testing.T) {
	next := &stubPublisher{errorsByID: map[string]error{"bad": errors.New("fail")}}
	p := NewBreakerPublisher(next, BreakerConfig{ConsecutiveFailures: 1, OpenTimeout: 10 * time.Millisecond}, zerolog.Nop())

	require.Error(t, p.Publish(context.Background(), &domain.OutboxEvent{ID: "bad"}))
	require.Equal(t, gobreaker.StateOpen, p.State())

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Publish(context.Background(), &domain.OutboxEvent{ID: "good"}))
	assert.Equal(t, gobreaker.StateClosed, p.State())
}
