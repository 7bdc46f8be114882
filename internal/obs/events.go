package obs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dspygo/optimizer/internal/contracts"
)

// EventSink adapts the package's leveled logger to contracts.EventSink, so
// a ContinuousController's named lifecycle events show up in the same log
// stream as its obs.Infof/Warnf/Errorf calls instead of a separate channel.
type EventSink struct{}

// NewEventSink returns an EventSink logging through the default logger.
func NewEventSink() EventSink {
	return EventSink{}
}

// OnEvent implements contracts.EventSink.
func (EventSink) OnEvent(_ context.Context, name string, fields map[string]interface{}) {
	Infof("event=%s %s", name, renderFields(fields))
}

func renderFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

var _ contracts.EventSink = EventSink{}
