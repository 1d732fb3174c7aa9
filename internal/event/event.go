package event

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"time"
)

// Event names emitted by the compliance engine.
const (
	DocumentTransitioned      = "document.transitioned"
	ShipmentComplianceChanged = "shipment.compliance.changed"
)

// Event is a logical notification for external dispatchers (UI, email, audit
// log). Delivery is best-effort; the engine never depends on it succeeding.
type Event struct {
	Name       string         `json:"event"`
	ShipmentID string         `json:"shipment_id"`
	Fields     map[string]any `json:"fields,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Sink receives engine events. Implementations must not block the caller for
// long and must never return control-flow errors into the engine.
type Sink interface {
	Emit(e Event)
}

// LogSink writes events as JSON lines to stdout, one object per line, in the
// same shape as the request logger.
type LogSink struct {
	enc *json.Encoder
}

// NewLogSink creates a stdout JSON event sink.
func NewLogSink() *LogSink {
	return NewLogSinkTo(os.Stdout)
}

// NewLogSinkTo creates a JSON event sink writing to w.
func NewLogSinkTo(w io.Writer) *LogSink {
	return &LogSink{enc: json.NewEncoder(w)}
}

func (s *LogSink) Emit(e Event) {
	entry := map[string]any{
		"ts":          e.OccurredAt.Format(time.RFC3339Nano),
		"level":       "info",
		"event":       e.Name,
		"shipment_id": e.ShipmentID,
	}
	for k, v := range e.Fields {
		entry[k] = v
	}
	if err := s.enc.Encode(entry); err != nil {
		log.Printf("failed to encode event: %v", err)
	}
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Emit(Event) {}
