package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

// Connect dials RabbitMQ, retrying a few times while the broker comes up.
func Connect(url string, attempts int, backoff time.Duration) (*amqp.Connection, error) {
	var (
		connection *amqp.Connection
		err        error
	)
	for i := 0; i < attempts; i++ {
		if connection, err = amqp.Dial(url); err == nil {
			return connection, nil
		}
		slog.Warn("failed to connect to rabbitmq, retrying", "attempt", i+1, "error", err)
		time.Sleep(backoff)
	}

	return nil, fmt.Errorf("could not connect to rabbitmq after %d attempts: %w", attempts, err)
}

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// VotePublisher sends VoteCast events to a durable queue. amqp channels are
// not safe for concurrent use, hence the mutex.
type VotePublisher struct {
	ch    channel
	queue string
	mu    sync.Mutex
}

// NewVotePublisher declares the queue and returns a publisher bound to it.
func NewVotePublisher(ch *amqp.Channel, queue string) (*VotePublisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &VotePublisher{ch: ch, queue: queue}, nil
}

var _ ports.VoteEventPublisher = (*VotePublisher)(nil)

func (p *VotePublisher) PublishVoteCast(ctx context.Context, event domain.VoteCast) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode vote event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.VoteID.String(),
			Type:         "vote.cast",
			Timestamp:    event.CastAt,
			Body:         body,
		},
	)
}
