package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/todo-service/internal/config"
	"github.com/spec-kit/todo-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTodoCreated, n.handleTodoCreated)
	n.dispatcher.Subscribe(events.EventTodoCompleted, n.handleTodoCompleted)
	n.dispatcher.Subscribe(events.EventTodoDeleted, n.handleTodoDeleted)
}

func (n *NotificationService) handleTodoCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TodoCreated", zap.Int64("todo_id", event.TodoID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTodoCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("TodoCompleted", zap.Int64("todo_id", event.TodoID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTodoDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("TodoDeleted", zap.Int64("todo_id", event.TodoID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("todo_id", event.TodoID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("todo_id", event.TodoID),
		zap.String("event_type", string(event.Type)))
}
