package mocks

import (
	"context"
	"sync"

	"karaoke/infras/otel"
)

// Otel hands out recording scopes instead of exporting spans.
type Otel struct {
	mu     sync.Mutex
	scopes []*Scope
}

func NewOtel() *Otel {
	return &Otel{}
}

// NewScope implements otel.Otel.
func (o *Otel) NewScope(ctx context.Context, _, spanName string) (context.Context, otel.Scope) {
	scope := newScope(spanName)

	o.mu.Lock()
	o.scopes = append(o.scopes, scope)
	o.mu.Unlock()

	return ctx, scope
}

// Shutdown implements otel.Otel.
func (o *Otel) Shutdown(_ context.Context) error {
	return nil
}

// Scope returns the most recent scope opened for spanName, or nil.
func (o *Otel) Scope(spanName string) *Scope {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i := len(o.scopes) - 1; i >= 0; i-- {
		if o.scopes[i].name == spanName {
			return o.scopes[i]
		}
	}

	return nil
}
