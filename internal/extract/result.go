package extract

import (
	"encoding/json"

	"github.com/jackzampolin/distill/internal/schema"
)

// Attempt records one prompt/response/validate cycle. Attempts are
// immutable once their outcome is recorded and live only as long as the
// session that produced them.
type Attempt struct {
	Index     int            `json:"index"` // 1-based
	Prompt    string         `json:"prompt"`
	RawOutput string         `json:"raw_output"`
	Outcome   schema.Outcome `json:"outcome"`
}

// Result is the tagged outcome of one extraction session. Exhausting the
// retry budget is an expected, reportable outcome: it produces
// OK == false, never an error.
type Result struct {
	OK       bool            `json:"ok"`
	Value    json.RawMessage `json:"value,omitempty"` // validated, conforms to the schema
	Err      string          `json:"error,omitempty"` // last attempt's validation error
	Attempts int             `json:"attempts"`

	// History holds every attempt in order, for diagnostics. Not part of
	// the wire result.
	History []Attempt `json:"-"`
}
