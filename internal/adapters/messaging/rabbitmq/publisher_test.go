package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type publishedMessage struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, publishedMessage{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestPublishVoteCast(t *testing.T) {
	ch := &fakeChannel{}
	publisher := &VotePublisher{ch: ch, queue: "vote.cast"}

	event := domain.VoteCast{
		VoteID:   uuid.New(),
		BallotID: uuid.New(),
		OptionID: uuid.New(),
		VoterID:  uuid.New(),
		CastAt:   time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.PublishVoteCast(context.Background(), event))

	require.Len(t, ch.messages, 1)
	published := ch.messages[0]
	assert.Equal(t, "", published.exchange)
	assert.Equal(t, "vote.cast", published.key)
	assert.Equal(t, "application/json", published.msg.ContentType)
	assert.Equal(t, amqp.Persistent, published.msg.DeliveryMode)
	assert.Equal(t, event.VoteID.String(), published.msg.MessageId)

	var decoded domain.VoteCast
	require.NoError(t, json.Unmarshal(published.msg.Body, &decoded))
	assert.Equal(t, event, decoded)
}

func TestPublishVoteCastConcurrent(t *testing.T) {
	ch := &fakeChannel{}
	publisher := &VotePublisher{ch: ch, queue: "vote.cast"}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, publisher.PublishVoteCast(context.Background(), domain.VoteCast{VoteID: uuid.New()}))
		}()
	}
	wg.Wait()

	assert.Len(t, ch.messages, 20)
}

func TestPublishVoteCastError(t *testing.T) {
	publisher := &VotePublisher{ch: &fakeChannel{err: errors.New("channel closed")}, queue: "vote.cast"}
	assert.Error(t, publisher.PublishVoteCast(context.Background(), domain.VoteCast{}))
}
