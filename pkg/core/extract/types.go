// Package extract runs the compensation-fact extraction pipeline over
// proxy statement documents: filter the document down to digit-bearing
// content, optionally chunk-embed-rank it, prompt a model for the
// structured facts, and absorb malformed answers through a repair
// ladder.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NA is the sentinel the prompts instruct the model to use for facts
// that are not present in the source document. Distinct from an omitted
// key: NA means the model looked and found nothing.
const NA = "NA"

// FieldValue is one extracted fact. Models answer with strings, bare
// numbers, or lists of strings depending on the field, so all three
// shapes decode into the same type.
type FieldValue struct {
	Str  string
	List []string
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Str = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		v.Str = n.String()
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		v.List = list
		return nil
	}
	// Anything else (nested objects, mixed arrays) is kept verbatim so
	// the caller still sees what the model produced.
	v.Str = string(data)
	return nil
}

func (v FieldValue) IsNA() bool {
	return len(v.List) == 0 && strings.EqualFold(strings.TrimSpace(v.Str), NA)
}

func (v FieldValue) String() string {
	if len(v.List) > 0 {
		return strings.Join(v.List, ", ")
	}
	return v.Str
}

// Facts is the structured extraction result keyed by the prompt's field
// names (CEO name, year covered, metric names, total compensation, and
// in full mode the bonus-weight and achievement breakdowns).
type Facts map[string]FieldValue

// LiteResult is the outcome of the lite extraction path. Exactly one of
// Facts or Raw is meaningful: Facts when some rung of the ladder parsed,
// Raw when every rung failed and the pipeline fell back to plain text.
type LiteResult struct {
	RunID    string
	Facts    Facts
	Raw      string
	Attempts int
}

// Structured reports whether the ladder produced parseable facts.
func (r *LiteResult) Structured() bool { return r.Facts != nil }

func (r *LiteResult) String() string {
	if r.Structured() {
		return fmt.Sprintf("run %s: %d structured fields after %d attempts", r.RunID, len(r.Facts), r.Attempts)
	}
	return fmt.Sprintf("run %s: raw fallback after %d attempts", r.RunID, r.Attempts)
}

// ThreeStepResult carries the three raw answers of the stepped full
// pipeline. The steps are best effort and unreconciled: step 2 may name
// metrics that differ from step 1's and no cross-step validation is
// attempted.
type ThreeStepResult struct {
	RunID   string
	Metrics string
	Values  string
	Summary string
}
