package events

import (
	"context"
	"reflect"
	"runtime/debug"
	"sync"
	"time"
)

var (
	errorType   = reflect.TypeFor[error]()
	contextType = reflect.TypeFor[context.Context]()
)

// listener is a subscribed func(ctx, T) error, or the Handle method of a
// subscribed value, bound to event type T.
type listener struct {
	target    any
	call      reflect.Value
	eventType reflect.Type
}

func newListener(target any) (*listener, error) {
	v := reflect.ValueOf(target)
	if !v.IsValid() {
		return nil, ErrInvalidListener
	}

	call, invalid := v, ErrInvalidListenerFunction
	if v.Kind() != reflect.Func {
		call, invalid = v.MethodByName("Handle"), ErrInvalidListenerMethod
		if !call.IsValid() {
			return nil, ErrInvalidListener
		}
	}

	t := call.Type()
	switch {
	case t.NumIn() != 2 || t.NumOut() != 1:
		return nil, invalid.WithDetail("signature", t.String())
	case !t.In(0).Implements(contextType):
		return nil, invalid.WithDetail("reason", "first argument must implement context.Context")
	case t.Out(0) != errorType:
		return nil, invalid.WithDetail("reason", "must return error")
	}

	return &listener{target: target, call: call, eventType: t.In(1)}, nil
}

func (l *listener) handle(ctx context.Context, event any) error {
	ev := reflect.ValueOf(event)
	if !ev.Type().AssignableTo(l.eventType) {
		return ErrInvalidEventType.
			WithDetail("expected", l.eventType.String()).
			WithDetail("got", ev.Type().String())
	}
	if ctx == nil {
		ctx = context.Background()
	}

	out := l.call.Call([]reflect.Value{reflect.ValueOf(ctx), ev})
	err, _ := out[0].Interface().(error)
	return err
}

type eventTask struct {
	ctx      context.Context
	event    any
	listener *listener
}

type bus struct {
	mu           sync.RWMutex
	listeners    map[reflect.Type][]*listener
	closed       bool
	wg           sync.WaitGroup
	panicHandler PanicHandler
	errorHandler ErrorHandler
	eventChan    chan eventTask
	workerCount  int
	asyncMode    bool

	publishTimeout time.Duration
}

func (b *bus) Subscribe(eventTypeArg any, listener any) error {
	eventTypeOf := reflect.TypeOf(eventTypeArg)
	if eventTypeOf == nil {
		return ErrInvalidEventType.WithDetail("reason", "eventType is nil")
	}
	if eventTypeOf.Kind() != reflect.Ptr || eventTypeOf.Elem().Kind() != reflect.Struct {
		return ErrInvalidEventType.WithDetail("reason", "eventType must be a pointer to struct")
	}
	eventType := eventTypeOf.Elem()

	l, err := newListener(listener)
	if err != nil {
		return err
	}

	if l.eventType != eventType {
		return ErrInvalidListener.
			WithDetail("expected_type", eventType.String()).
			WithDetail("actual_type", l.eventType.String())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	b.listeners[eventType] = append(b.listeners[eventType], l)
	return nil
}

// Publish delivers event to every listener of its exact type. In sync mode
// the first listener error is returned; in async mode listeners run on the
// worker pool and their errors go to the ErrorHandler.
func (b *bus) Publish(ctx context.Context, event any) error {
	if event == nil {
		return nil
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrPublishOnClosedBus
	}

	listeners := b.listeners[reflect.TypeOf(event)]
	if len(listeners) == 0 {
		b.mu.RUnlock()
		return nil
	}

	if b.asyncMode {
		// the read lock keeps Close from closing the channel mid-send
		defer b.mu.RUnlock()
		return b.enqueue(ctx, event, listeners)
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		if err := b.deliver(ctx, event, l); err != nil {
			return err
		}
	}

	return nil
}

func (b *bus) enqueue(ctx context.Context, event any, listeners []*listener) error {
	timer := time.NewTimer(b.publishTimeout)
	defer timer.Stop()

	for _, l := range listeners {
		select {
		case b.eventChan <- eventTask{ctx: ctx, event: event, listener: l}:
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return ErrEventChannelBlocked.
				WithDetail("event", eventName(event)).
				WithDetail("timeout", b.publishTimeout.String())
		}
	}
	return nil
}

func (b *bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.eventChan != nil {
		close(b.eventChan)
	}

	b.wg.Wait()
	return nil
}

func (b *bus) startWorkers() {
	b.eventChan = make(chan eventTask, b.workerCount*10)
	for range b.workerCount {
		b.wg.Add(1)
		go b.worker()
	}
}

func (b *bus) worker() {
	defer b.wg.Done()
	for task := range b.eventChan {
		_ = b.deliver(task.ctx, task.event, task.listener)
	}
}

// deliver runs one listener, reporting its error or panic to the handlers.
func (b *bus) deliver(ctx context.Context, event any, l *listener) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.panicHandler.Handle(event, l.target, r, debug.Stack())
		}
	}()

	if err = l.handle(ctx, event); err != nil {
		b.errorHandler.Handle(event, l.target, err)
	}
	return err
}
