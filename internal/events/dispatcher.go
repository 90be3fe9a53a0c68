// Package events carries domain events between the order write path and
// consumers that maintain derived state, so cross-entity writes stay out of
// the request handlers.
package events

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// OrderDelivered is published when an order first reaches delivered.
// MealCount is the sum of item quantities on the order.
type OrderDelivered struct {
	OrderID   uuid.UUID
	ChefID    uuid.UUID
	MealCount int32
}

// DeliveredHandler consumes OrderDelivered events.
type DeliveredHandler interface {
	HandleOrderDelivered(ctx context.Context, e OrderDelivered) error
}

// Dispatcher fans out events to registered handlers from a single run loop.
// Register handlers before calling Run.
type Dispatcher struct {
	delivered chan OrderDelivered
	handlers  []DeliveredHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		delivered: make(chan OrderDelivered, 64),
	}
}

// OnOrderDelivered registers a handler. Not safe to call after Run starts.
func (d *Dispatcher) OnOrderDelivered(h DeliveredHandler) {
	d.handlers = append(d.handlers, h)
}

// PublishOrderDelivered enqueues an event. Drops with a log line when the
// buffer is full rather than blocking a request handler.
func (d *Dispatcher) PublishOrderDelivered(e OrderDelivered) {
	select {
	case d.delivered <- e:
	default:
		log.Printf("ERROR: event buffer full, dropping OrderDelivered for order %s", e.OrderID)
	}
}

// Run consumes events until ctx is cancelled.
// This should be called as a goroutine: go dispatcher.Run(ctx)
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-d.delivered:
			for _, h := range d.handlers {
				if err := h.HandleOrderDelivered(ctx, e); err != nil {
					log.Printf("ERROR: handle OrderDelivered for order %s: %v", e.OrderID, err)
				}
			}
		}
	}
}
