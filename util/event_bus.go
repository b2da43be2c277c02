// util/event_bus.go

package util

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
)

// EventType names a domain write event.
type EventType string

const (
	RecipeCreated   EventType = "recipe.created"
	RecipeUpdated   EventType = "recipe.updated"
	RecipeDeleted   EventType = "recipe.deleted"
	RatingCreated   EventType = "rating.created"
	RatingUpdated   EventType = "rating.updated"
	RatingDeleted   EventType = "rating.deleted"
	FavoriteCreated EventType = "favorite.created"
	FavoriteDeleted EventType = "favorite.deleted"
	ImageUploaded   EventType = "image.uploaded"
)

// RecipeEvent is the payload for recipe write events.
type RecipeEvent struct {
	RecipeID   string
	AuthorID   string
	CategoryID string
	Title      string
}

// RatingEvent is the payload for rating and favorite write events.
type RatingEvent struct {
	RecipeID string
	UserID   string
	Value    int
}

// ImageEvent is the payload for image upload events.
type ImageEvent struct {
	ImageID  string
	RecipeID string
}

// Event represents an event in the system
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles an event
type EventHandler func(context.Context, Event) error

// EventBus manages event subscriptions and publications
type EventBus struct {
	subscribers map[EventType][]EventHandler
	mu          sync.RWMutex
	errorChan   chan error
}

// NewEventBus creates a new EventBus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]EventHandler),
		errorChan:   make(chan error, 100),
	}
}

// Subscribe adds a new subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
}

// Publish sends an event to all subscribers asynchronously. Handler errors
// are collected on the error channel and logged; they never reach the
// publisher.
func (eb *EventBus) Publish(ctx context.Context, eventType EventType, payload interface{}) {
	eb.mu.RLock()
	handlers, exists := eb.subscribers[eventType]
	eb.mu.RUnlock()

	if !exists {
		return
	}

	event := Event{
		Type:    eventType,
		Payload: payload,
	}

	for _, handler := range handlers {
		go func(h EventHandler) {
			if err := h(ctx, event); err != nil {
				select {
				case eb.errorChan <- fmt.Errorf("event handler error: %w", err):
				default:
					logger.Error("Error channel full, logging event handler error",
						zap.Error(err),
						zap.String("eventType", string(eventType)))
				}
			}
		}(handler)
	}
}

// PublishSync runs all subscribers inline and returns when they finish.
// Used for the invalidation path, which must complete before the triggering
// write's response is returned. Handler errors are logged, not propagated.
func (eb *EventBus) PublishSync(ctx context.Context, eventType EventType, payload interface{}) {
	eb.mu.RLock()
	handlers := append([]EventHandler(nil), eb.subscribers[eventType]...)
	eb.mu.RUnlock()

	event := Event{
		Type:    eventType,
		Payload: payload,
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			logger.Error("Event handler error",
				zap.Error(err),
				zap.String("eventType", string(eventType)))
		}
	}
}

// Start begins processing events and handling errors
func (eb *EventBus) Start(ctx context.Context) {
	go eb.processErrors(ctx)
}

// processErrors handles errors from event handlers
func (eb *EventBus) processErrors(ctx context.Context) {
	for {
		select {
		case err := <-eb.errorChan:
			logger.Error("Event handler error", zap.Error(err))
		case <-ctx.Done():
			return
		}
	}
}
