package events

import (
	"fmt"

	"github.com/shuldan/featurehub/pkg/contracts"
)

type defaultPanicHandler struct {
	logger contracts.Logger
}

func (d *defaultPanicHandler) Handle(event any, listener any, panicValue any, stack []byte) {
	if d.logger == nil {
		return
	}
	d.logger.Critical("event bus panic", "event", eventName(event), "listener", fmt.Sprintf("%T", listener),
		"panic_value", panicValue, "stack", string(stack))
}

type defaultErrorHandler struct {
	logger contracts.Logger
}

func (d *defaultErrorHandler) Handle(event any, listener any, err error) {
	if d.logger == nil {
		return
	}
	d.logger.Error("event bus error", "event", eventName(event), "listener", fmt.Sprintf("%T", listener), "error", err)
}

func eventName(event any) string {
	return fmt.Sprintf("%T", event)
}
