package contracts

import (
	"context"
)

// Publisher delivers lifecycle events such as a created or destroyed
// feature app scope. Publish must not block longer than the bus allows;
// a full bus reports an error rather than stalling GetScope.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// Bus routes published events to listeners subscribed by event type.
// A listener is a func(context.Context, T) error or a value with such a
// Handle method.
type Bus interface {
	Publisher
	Subscribe(eventType any, listener any) error
	Close() error
}
