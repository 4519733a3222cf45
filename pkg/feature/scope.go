package feature

import "sync/atomic"

// Scope is one live feature app instance.
type Scope struct {
	id       string
	uid      string
	seq      uint64
	instance any
	unbind   func() error
	manager  *Manager

	destroyed atomic.Bool
}

// ID is unique per instantiation, even when a UID is reused after destroy.
func (s *Scope) ID() string {
	return s.id
}

// UID is the identity key: the feature app ID plus the optional specifier.
func (s *Scope) UID() string {
	return s.uid
}

// Instance is the value returned by the definition's Create.
func (s *Scope) Instance() any {
	return s.instance
}

// Destroyed reports whether Destroy has been called.
func (s *Scope) Destroyed() bool {
	return s.destroyed.Load()
}

// Destroy frees the UID and unbinds the feature services. It runs once;
// later calls return ErrScopeDestroyed. The UID is free again even when
// unbinding fails, and that failure is returned as ErrUnbind.
func (s *Scope) Destroy() error {
	if !s.destroyed.CompareAndSwap(false, true) {
		return ErrScopeDestroyed.WithDetail("uid", s.uid)
	}

	s.manager.release(s)

	var err error
	if unbindErr := unbind(s.unbind); unbindErr != nil {
		err = ErrUnbind.WithDetail("uid", s.uid).WithCause(unbindErr)
		s.manager.logger.Error("feature services could not be unbound", "uid", s.uid, "scope_id", s.id, "error", unbindErr)
	}

	s.manager.logger.Info("the feature app has been destroyed", "uid", s.uid, "scope_id", s.id)
	s.manager.publish(ScopeDestroyed{UID: s.uid, ScopeID: s.id, Err: err})

	return err
}

// InstanceOf returns the scope's instance as T.
func InstanceOf[T any](s *Scope) (T, bool) {
	instance, ok := s.instance.(T)
	return instance, ok
}
