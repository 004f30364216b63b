// Package feed follows a JSONL activity file and publishes it as snapshots
// of records for the dashboard.
package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"
)

const (
	KindAgent     = "agent"
	KindIssue     = "issue"
	KindMail      = "mail"
	KindTelemetry = "telemetry"
)

var ErrEmptyLine = errors.New("empty line")

// Record is one line of the feed.
type Record struct {
	ID    string    `json:"id,omitempty"`
	Kind  string    `json:"kind"`
	Agent string    `json:"agent,omitempty"`
	Title string    `json:"title"`
	Body  string    `json:"body,omitempty"`
	Time  time.Time `json:"time,omitzero"`

	key string
}

// Parse decodes one JSONL line. Records without an id are keyed by a hash
// of their content, so repeating the same line updates a single record.
func Parse(line []byte) (Record, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Record{}, ErrEmptyLine
	}
	var r Record
	if err := json.Unmarshal(line, &r); err != nil {
		return Record{}, fmt.Errorf("failed to decode feed record: %w", err)
	}
	if r.ID != "" {
		r.key = r.ID
	} else {
		r.key = "h:" + strconv.FormatUint(xxh3.Hash(line), 16)
	}
	return r, nil
}

// Key returns the record's identity within the feed.
func (r Record) Key() string {
	if r.key == "" {
		return r.ID
	}
	return r.key
}
