package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/osdatum/backend/internal/domain"
	"github.com/osdatum/backend/internal/event"
	"github.com/osdatum/backend/internal/firebase"
	"github.com/osdatum/backend/internal/sender"
	pkgkafka "github.com/osdatum/backend/pkg/kafka"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdateTier(ctx context.Context, id, tier string) error {
	return m.Called(ctx, id, tier).Error(0)
}

type mockPurchaseRepo struct {
	mock.Mock
}

func (m *mockPurchaseRepo) Create(ctx context.Context, userID, gridID string) (bool, error) {
	args := m.Called(ctx, userID, gridID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPurchaseRepo) ListGridIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if g := args.Get(0); g != nil {
		return g.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockApplicationRepo struct {
	mock.Mock
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *domain.SubscriptionApplication) error {
	return m.Called(ctx, app).Error(0)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, idToken string) (*firebase.Profile, error) {
	args := m.Called(ctx, idToken)
	if p := args.Get(0); p != nil {
		return p.(*firebase.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

// capturePublisher records published events in memory.
type capturePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

type publishedEvent struct {
	topic string
	event *pkgkafka.Event
}

func (p *capturePublisher) Publish(ctx context.Context, topic string, evt *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, event: evt})
	return nil
}

func (p *capturePublisher) published(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.topic == topic {
			n++
		}
	}
	return n
}

// captureSender records sent messages in memory.
type captureSender struct {
	mu       sync.Mutex
	messages []sender.Message
	err      error
}

func (s *captureSender) Send(ctx context.Context, msg sender.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *captureSender) sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProducer(p event.Publisher) *event.Producer {
	return event.NewProducer(p, testLogger())
}
