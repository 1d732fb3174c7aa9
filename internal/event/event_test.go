package event

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSink_Emit(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSinkTo(&buf)

	occurred := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	sink.Emit(Event{
		Name:       DocumentTransitioned,
		ShipmentID: "SHP-001",
		Fields:     map[string]any{"from": "pending", "to": "submitted"},
		OccurredAt: occurred,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "document.transitioned", entry["event"])
	assert.Equal(t, "SHP-001", entry["shipment_id"])
	assert.Equal(t, "pending", entry["from"])
	assert.Equal(t, "submitted", entry["to"])
	assert.Equal(t, occurred.Format(time.RFC3339Nano), entry["ts"])
	assert.Equal(t, "info", entry["level"])
}

func TestNopSink(t *testing.T) {
	// Must be safe to call with anything.
	NopSink{}.Emit(Event{Name: ShipmentComplianceChanged})
}
