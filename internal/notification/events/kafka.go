package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"kolabo/pkg/platform/circuit"
)

const probeInterval = 5 * time.Second

// Kafka publishes notification events to a single topic, keyed by recipient
// so per-recipient ordering survives partitioning. A circuit breaker sheds
// produce attempts while the brokers are down; dispatch is best-effort, so
// shed events are simply lost.
type Kafka struct {
	client  *kgo.Client
	topic   string
	breaker *circuit.Breaker
	logger  *slog.Logger

	mu        sync.Mutex
	lastProbe time.Time
}

// NewKafka connects to the brokers and ensures the topic exists. Topic
// creation is idempotent; an already-exists response is not an error.
func NewKafka(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}
	logger.Info("notification event topic ready", "topic", topic)
	return &Kafka{
		client:  client,
		topic:   topic,
		breaker: circuit.New("kafka-events", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:  logger,
	}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, -1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (k *Kafka) Publish(ctx context.Context, event Event) error {
	if k.breaker.IsOpen() && !k.shouldProbe() {
		return fmt.Errorf("produce event: %w", errCircuitOpen)
	}
	if err := k.produce(ctx, event); err != nil {
		if _, change := k.breaker.RecordFailure(); change.Opened {
			k.logger.Warn("event publisher circuit opened", "topic", k.topic, "error", err)
		}
		return fmt.Errorf("produce event: %w", err)
	}
	if _, change := k.breaker.RecordSuccess(); change.Closed {
		k.logger.Info("event publisher circuit closed", "topic", k.topic)
	}
	return nil
}

var errCircuitOpen = errors.New("publisher circuit open")

// shouldProbe rate-limits produce attempts while the circuit is open so a
// broker outage does not stall every dispatch on the produce timeout.
func (k *Kafka) shouldProbe() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if time.Since(k.lastProbe) < probeInterval {
		return false
	}
	k.lastProbe = time.Now()
	return true
}

func (k *Kafka) produce(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(fmt.Sprintf("%s:%d", event.RecipientType, event.RecipientID)),
		Value: payload,
	}
	return k.client.ProduceSync(ctx, record).FirstErr()
}

func (k *Kafka) Close() {
	k.client.Close()
}
