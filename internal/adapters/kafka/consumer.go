package kafka

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"stockscore/internal/adapters/config"
	"stockscore/internal/domain/score"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Subscriber reads score events back from the score topic
type Subscriber struct {
	reader messageReader
	log    *logger.Logger
}

// ScoreHandler receives each decoded score event
type ScoreHandler func(ctx context.Context, event score.ComputedEvent) error

// NewSubscriber creates a group reader for cfg.ScoreTopic. An empty groupID
// joins a fresh throwaway group, so every partition is followed from its
// latest offset.
func NewSubscriber(cfg config.KafkaConfig, groupID string) (*Subscriber, error) {
	if !cfg.Enabled() {
		return nil, errors.Wrap(errors.ErrUnavailable, "kafka: no brokers configured")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     subscriberGroup(groupID),
		Topic:       cfg.ScoreTopic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})
	return newSubscriber(r, cfg.ScoreTopic), nil
}

const watchGroupPrefix = "stockscore-watch-"

func subscriberGroup(groupID string) string {
	if groupID != "" {
		return groupID
	}
	return watchGroupPrefix + uuid.NewString()
}

func newSubscriber(r messageReader, topic string) *Subscriber {
	return &Subscriber{
		reader: r,
		log:    logger.Get().With("component", "kafka_subscriber", "topic", topic),
	}
}

// Consume blocks until ctx is done, passing every score.computed event to
// handler. Messages of other types are skipped. Handler errors are logged
// and do not stop the loop.
func (s *Subscriber) Consume(ctx context.Context, handler ScoreHandler) error {
	for {
		msg, err := s.read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "read score event")
		}

		if t := EventType(msg); t != "" && t != EventScoreComputed {
			continue
		}

		var event score.ComputedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			s.log.Warnw("Skipping undecodable score event", "key", string(msg.Key), "error", err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			s.log.Warnw("Score event handler failed", "ticker", event.Ticker, "error", err)
		}
	}
}

func (s *Subscriber) read(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	default:
	}

	msg, err := s.reader.ReadMessage(ctx)
	if err != nil && ctx.Err() != nil {
		return kafka.Message{}, ctx.Err()
	}
	return msg, err
}

// Close closes the reader
func (s *Subscriber) Close() error {
	return s.reader.Close()
}
