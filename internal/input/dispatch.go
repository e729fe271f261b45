// Package input routes keyboard events coming from the terminal UI.
//
// Every form declares a Scope. The Enter key is a submit only inside a scope
// that registered a handler; multi-line fields keep it as a newline and any
// other field swallows it, so a barcode wedge typing "code⏎" can never submit
// an unrelated form.
package input

import (
	"context"
	"strings"
	"sync"
)

type Scope string

const (
	ScopeNone      Scope = ""
	ScopeAdd       Scope = "add"
	ScopeMultiline Scope = "multiline"
)

const KeyEnter = "Enter"

type Event struct {
	Key      string `json:"key"`
	Scope    Scope  `json:"scope"`
	Value    string `json:"value"`
	Quantity *int   `json:"quantity,omitempty"`
}

func (e Event) IsEnter() bool {
	return strings.EqualFold(e.Key, KeyEnter)
}

type Outcome string

const (
	Passed    Outcome = "passed"    // the field keeps the key
	Delivered Outcome = "delivered" // a scope handler ran
	Swallowed Outcome = "swallowed" // Enter outside any submit scope
)

type HandlerFunc func(ctx context.Context, ev Event) error

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Scope]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Scope]HandlerFunc)}
}

// Handle registers the submit action of a scope. ScopeNone and ScopeMultiline
// cannot have one.
func (d *Dispatcher) Handle(scope Scope, fn HandlerFunc) {
	if scope == ScopeNone || scope == ScopeMultiline {
		panic("input: scope " + string(scope) + " cannot submit")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[scope] = fn
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Outcome, error) {
	if !ev.IsEnter() || ev.Scope == ScopeMultiline {
		return Passed, nil
	}

	d.mu.RLock()
	fn, ok := d.handlers[ev.Scope]
	d.mu.RUnlock()
	if !ok {
		return Swallowed, nil
	}
	return Delivered, fn(ctx, ev)
}
