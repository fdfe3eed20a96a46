package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zahek/todo-platform/internal/domain"
	pkgkafka "github.com/zahek/todo-platform/pkg/kafka"
)

// Kafka topics for account and session events.
const (
	TopicUserRegistered = "todo.user.registered"
	TopicSessionIssued  = "todo.session.issued"
	TopicSessionRevoked = "todo.session.revoked"
)

// Aggregate types.
const (
	AggregateTypeUser    = "user"
	AggregateTypeSession = "session"
)

// SourceAPI identifies events published by this service.
const SourceAPI = "todo-api"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SessionData is the payload for session.issued and session.revoked.
// Token material is never published.
type SessionData struct {
	UserID string `json:"user_id"`
}

// Publisher publishes domain events. Callers treat failures as best effort.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishSessionIssued(ctx context.Context, userID string) error
	PublishSessionRevoked(ctx context.Context, userID string) error
}

// eventWriter is the part of pkg/kafka.Producer used here.
type eventWriter interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes events to Kafka.
type Producer struct {
	kafka  eventWriter
	logger *slog.Logger
}

var _ Publisher = (*Producer)(nil)

// NewProducer creates a new event producer.
func NewProducer(kafka eventWriter, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

// PublishSessionIssued publishes a session.issued event.
func (p *Producer) PublishSessionIssued(ctx context.Context, userID string) error {
	return p.publish(ctx, TopicSessionIssued, userID, AggregateTypeSession, SessionData{UserID: userID})
}

// PublishSessionRevoked publishes a session.revoked event.
func (p *Producer) PublishSessionRevoked(ctx context.Context, userID string) error {
	return p.publish(ctx, TopicSessionRevoked, userID, AggregateTypeSession, SessionData{UserID: userID})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

// Nop discards every event. Used when Kafka is disabled.
type Nop struct{}

var _ Publisher = Nop{}

func (Nop) PublishUserRegistered(context.Context, *domain.User) error { return nil }
func (Nop) PublishSessionIssued(context.Context, string) error         { return nil }
func (Nop) PublishSessionRevoked(context.Context, string) error        { return nil }
