package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"stockscore/internal/adapters/config"
	"stockscore/internal/domain/score"
	"stockscore/internal/metrics"
	"stockscore/pkg/errors"
	"stockscore/pkg/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publishes score events to a single topic
type Publisher struct {
	writer messageWriter
	topic  string
	log    *logger.Logger
}

var _ score.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a synchronous publisher for cfg.ScoreTopic
func NewPublisher(cfg config.KafkaConfig) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, errors.Wrap(errors.ErrUnavailable, "kafka: no brokers configured")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.ScoreTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return newPublisher(w, cfg.ScoreTopic), nil
}

func newPublisher(w messageWriter, topic string) *Publisher {
	return &Publisher{
		writer: w,
		topic:  topic,
		log:    logger.Get().With("component", "kafka_publisher", "topic", topic),
	}
}

// PublishScoreComputed writes event keyed by ticker so one ticker stays on one partition
func (p *Publisher) PublishScoreComputed(ctx context.Context, event score.ComputedEvent) error {
	msg, err := computedMessage(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, msg)
	metrics.RecordKafkaMessage(p.topic, err)
	if err != nil {
		return errors.Wrapf(err, "publish %s for %s", EventScoreComputed, event.Ticker)
	}

	p.log.Debugw("Published score event", "ticker", event.Ticker, "id", event.ID)
	return nil
}

// Close flushes and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func computedMessage(event score.ComputedEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, errors.Wrap(err, "encode score event")
	}
	return kafka.Message{
		Key:     []byte(event.Ticker),
		Value:   data,
		Headers: []kafka.Header{eventHeader(EventScoreComputed)},
		Time:    event.Timestamp,
	}, nil
}
