package contracts

import (
	"context"
	"sync"
)

// EventSink receives structured telemetry events ("on_event" in the
// teleprompter/continuous-controller design notes) without the core
// depending on any specific metrics or logging backend. Grounded on the
// teacher's internal/utils.Callback shape (OnStart/OnEnd/OnError), narrowed
// to a single event-name-plus-payload call so it composes easily with a
// Prometheus sink or a logger.
type EventSink interface {
	OnEvent(ctx context.Context, name string, fields map[string]interface{})
}

// NoopEventSink discards every event. Useful as a default collaborator in
// tests and CLI usage that has no monitoring wired up.
type NoopEventSink struct{}

// OnEvent implements EventSink.
func (NoopEventSink) OnEvent(context.Context, string, map[string]interface{}) {}

// MultiEventSink fans an event out to a set of registered sinks, adapted
// from the teacher's internal/utils.CallbackManager (which fanned
// OnStart/OnEnd/OnError out to multiple Callback values the same way).
type MultiEventSink struct {
	mu    sync.RWMutex
	sinks []EventSink
}

// NewMultiEventSink creates an empty fan-out sink.
func NewMultiEventSink() *MultiEventSink {
	return &MultiEventSink{}
}

// Add registers a sink to receive future events.
func (m *MultiEventSink) Add(sink EventSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, sink)
}

// OnEvent implements EventSink, forwarding to every registered sink.
func (m *MultiEventSink) OnEvent(ctx context.Context, name string, fields map[string]interface{}) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sink := range m.sinks {
		sink.OnEvent(ctx, name, fields)
	}
}
