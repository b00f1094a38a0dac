// Package events publishes created notifications to a stream for
// out-of-scope delivery workers (push, email). Publishing is best effort:
// the dispatcher logs failures and never fails the originating request.
package events

//go:generate mockgen -source=events.go -destination=mocks/mocks.go -package=mocks Publisher

import (
	"context"
	"sync"
	"time"

	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
)

// Event is the stream envelope for one created notification.
type Event struct {
	ID             string                `json:"id"`
	NotificationID domain.NotificationID `json:"notification_id"`
	Type           models.Type           `json:"type"`
	RecipientID    int64                 `json:"recipient_id"`
	RecipientType  domain.ActorKind      `json:"recipient_type"`
	OccurredAt     time.Time             `json:"occurred_at"`
}

// Publisher emits notification events to the stream.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Memory is an in-process publisher for tests and brokerless runs.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Publish(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *Memory) Close() {}

// Events returns a snapshot of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
