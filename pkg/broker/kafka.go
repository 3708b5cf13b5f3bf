package broker

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers []string
	Topic   string
}

var ErrDisabled = errors.New("kafka disabled")

// Message is what the outbox relay hands to a Publisher.
type Message struct {
	Topic   string
	Key     string
	Value   []byte
	Headers map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}

type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(cfg *Config) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrDisabled
	}
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		topic: cfg.Topic,
	}, nil
}

func (p *KafkaProducer) Publish(ctx context.Context, msgs ...Message) error {
	out := make([]kafka.Message, 0, len(msgs))
	now := time.Now().UTC()
	for _, m := range msgs {
		topic := m.Topic
		if topic == "" {
			topic = p.topic
		}
		km := kafka.Message{Topic: topic, Key: []byte(m.Key), Value: m.Value, Time: now}
		for k, v := range m.Headers {
			km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
		}
		out = append(out, km)
	}
	return p.writer.WriteMessages(ctx, out...)
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
