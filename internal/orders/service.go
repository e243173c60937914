package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Store is the key-value record store holding one record per order.
// Get and Delete return ErrNotFound for unknown ids.
type Store interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	Put(ctx context.Context, o Order) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, orderID string, ev Event) error
}

// ProductChecker reports whether a product exists. A nil error with false
// means the product service answered "not found"; any other failure is an error.
type ProductChecker interface {
	ProductExists(ctx context.Context, productID int) (bool, error)
}

// Service implements the order lifecycle. Every mutation is persisted first
// and published second; a failed publish leaves the record in place.
type Service struct {
	store    Store
	events   EventPublisher
	products ProductChecker
	producer string
}

func NewService(store Store, events EventPublisher, products ProductChecker, producer string) *Service {
	return &Service{store: store, events: events, products: products, producer: producer}
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, userID int, items []Item) (Order, error) {
	if err := s.validateProducts(ctx, items); err != nil {
		return Order{}, err
	}

	o := Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Items:  append(make([]Item, 0, len(items)), items...),
		Status: StatusPending,
	}
	if err := s.store.Put(ctx, o); err != nil {
		return Order{}, err
	}
	slog.InfoContext(ctx, "order created", "order_id", o.ID, "user_id", userID, "items", len(o.Items))

	snap := o
	if err := s.publish(ctx, EventOrderCreated, o.ID, &snap); err != nil {
		return Order{}, err
	}
	return o, nil
}

// UpdateStatus rewrites the whole record with the new status. Concurrent
// updates of the same order are last-write-wins.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	o.Status = status
	if err := s.store.Put(ctx, o); err != nil {
		return Order{}, err
	}
	slog.InfoContext(ctx, "order status updated", "order_id", id, "status", status)

	snap := o
	if err := s.publish(ctx, EventOrderUpdated, id, &snap); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	// the record may disappear between Exists and Get; the event then carries no snapshot
	var snap *Order
	o, err := s.store.Get(ctx, id)
	switch {
	case err == nil:
		snap = &o
	case !errors.Is(err, ErrNotFound):
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	slog.InfoContext(ctx, "order deleted", "order_id", id)

	return s.publish(ctx, EventOrderDeleted, id, snap)
}

func (s *Service) validateProducts(ctx context.Context, items []Item) error {
	for _, it := range items {
		ok, err := s.products.ProductExists(ctx, it.ProductID)
		if err != nil {
			return fmt.Errorf("%w: product %d: %w", ErrLookupUnavailable, it.ProductID, err)
		}
		if !ok {
			return fmt.Errorf("%w: product %d not found", ErrValidation, it.ProductID)
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, kind, orderID string, o *Order) error {
	ev := Event{
		EventID:    uuid.NewString(),
		Event:      kind,
		OccurredAt: time.Now().UTC(),
		Producer:   s.producer,
		Order:      o,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		ev.TraceID = sc.TraceID().String()
	}

	if err := s.events.PublishEvent(ctx, orderID, ev); err != nil {
		// the record is already persisted; nothing is rolled back
		return fmt.Errorf("%w: %s for order %s: %w", ErrPublishFailed, kind, orderID, err)
	}
	return nil
}
