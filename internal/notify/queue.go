// Package notify is the best-effort notification pipeline. Side-effect
// messages (admin alerts, donor thank-yous) are enqueued without blocking
// the request that produced them; a worker delivers each with retry and
// backoff, and failures are logged, never surfaced.
package notify

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
)

// Sink delivers one notification somewhere.
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// Notification kinds.
const (
	KindAdminAlert    = "admin_alert"
	KindDonorThankYou = "donor_thank_you"
)

type Notification struct {
	Kind    string
	Subject string
	Body    string
	// Recipient is sink-specific: an email for thank-yous, unused for the
	// admin chat.
	Recipient string
}

const (
	queueCapacity   = 256
	deliverAttempts = 3
	deliverTimeout  = 15 * time.Second
)

// Queue is a bounded async delivery queue with a single worker.
type Queue struct {
	sink  Sink
	tasks chan Notification
	done  chan struct{}
}

func NewQueue(sink Sink) *Queue {
	return &Queue{
		sink:  sink,
		tasks: make(chan Notification, queueCapacity),
		done:  make(chan struct{}),
	}
}

// Enqueue never blocks: when the queue is full the notification is dropped
// and logged. Callers treat delivery as fire-and-forget.
func (q *Queue) Enqueue(n Notification) {
	select {
	case q.tasks <- n:
	default:
		log.Warn().Str("kind", n.Kind).Str("subject", n.Subject).Msg("notification queue full, dropping")
	}
}

// Run consumes the queue until Stop is called. Intended as a goroutine.
func (q *Queue) Run() {
	for {
		select {
		case n := <-q.tasks:
			q.deliver(n)
		case <-q.done:
			// Drain what is already queued, then stop.
			for {
				select {
				case n := <-q.tasks:
					q.deliver(n)
				default:
					return
				}
			}
		}
	}
}

// Stop signals Run to drain and exit.
func (q *Queue) Stop() {
	close(q.done)
}

func (q *Queue) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	err := retry.Do(
		func() error { return q.sink.Deliver(ctx, n) },
		retry.Attempts(deliverAttempts),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Error().Err(err).Str("kind", n.Kind).Str("subject", n.Subject).Msg("notification delivery failed")
	}
}

// NopSink discards notifications; used when no sink is configured.
type NopSink struct{}

func (NopSink) Deliver(ctx context.Context, n Notification) error { return nil }
