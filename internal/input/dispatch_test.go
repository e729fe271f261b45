package input

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchEnter(t *testing.T) {
	var got []Event
	d := NewDispatcher()
	d.Handle(ScopeAdd, func(ctx context.Context, ev Event) error {
		got = append(got, ev)
		return nil
	})
	ctx := context.Background()

	out, err := d.Dispatch(ctx, Event{Key: "Enter", Scope: ScopeAdd, Value: "7401000000011"})
	require.NoError(t, err)
	assert.Equal(t, Delivered, out)

	out, err = d.Dispatch(ctx, Event{Key: "enter", Scope: ScopeMultiline, Value: "línea"})
	require.NoError(t, err)
	assert.Equal(t, Passed, out)

	out, err = d.Dispatch(ctx, Event{Key: "Enter", Scope: ScopeNone, Value: "7401000000011"})
	require.NoError(t, err)
	assert.Equal(t, Swallowed, out)

	out, err = d.Dispatch(ctx, Event{Key: "Enter", Scope: "clients", Value: "x"})
	require.NoError(t, err)
	assert.Equal(t, Swallowed, out)

	require.Len(t, got, 1)
	assert.Equal(t, "7401000000011", got[0].Value)
}

func TestDispatchOtherKeysPass(t *testing.T) {
	d := NewDispatcher()
	d.Handle(ScopeAdd, func(ctx context.Context, ev Event) error {
		t.Fatal("handler must not run for non-Enter keys")
		return nil
	})

	out, err := d.Dispatch(context.Background(), Event{Key: "a", Scope: ScopeAdd})
	require.NoError(t, err)
	assert.Equal(t, Passed, out)
}

func TestDispatchReturnsHandlerError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDispatcher()
	d.Handle(ScopeAdd, func(ctx context.Context, ev Event) error { return boom })

	out, err := d.Dispatch(context.Background(), Event{Key: KeyEnter, Scope: ScopeAdd})
	assert.Equal(t, Delivered, out)
	assert.ErrorIs(t, err, boom)
}

func TestHandleRejectsNonSubmitScopes(t *testing.T) {
	d := NewDispatcher()
	noop := func(ctx context.Context, ev Event) error { return nil }
	assert.Panics(t, func() { d.Handle(ScopeNone, noop) })
	assert.Panics(t, func() { d.Handle(ScopeMultiline, noop) })
}
