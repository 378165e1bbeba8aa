// Package observe defines the structured debug records emitted around
// backend mutations and the sink they are delivered to. The core only
// produces records; interpretation is left to whatever sink the caller
// supplies (console logger, audit store, test recorder).
package observe

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies what produced a record.
type Source string

const (
	// SourceClient marks a record emitted before a backend call.
	SourceClient Source = "client"

	// SourceError marks a record emitted when a backend call failed.
	SourceError Source = "error"
)

// Record is a structured debug record describing one mutation attempt.
type Record struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Source    Source         `json:"source"`
	Label     string         `json:"label"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewRecord creates a record with a fresh ID and the current time.
func NewRecord(source Source, label string, payload map[string]any) Record {
	return Record{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		Label:     label,
		Payload:   payload,
	}
}

// Sink receives debug records. Implementations must not block for long;
// the emitting operation waits for Record to return.
type Sink interface {
	Record(rec Record)
}

// Func adapts a function to the Sink interface.
type Func func(Record)

// Record implements Sink.
func (f Func) Record(rec Record) { f(rec) }

// Nop returns a sink that discards all records.
func Nop() Sink {
	return Func(func(Record) {})
}
