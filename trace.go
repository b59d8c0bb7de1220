package overlay

import (
	"encoding/json"
)

// Layer roles reported by traces.
const (
	RoleCurrent  = "current"
	RolePrevious = "previous"
)

// Trace captures the layer state of a single key for debugging or audit
// transport.
type Trace struct {
	Key    string       `json:"key"`
	Layers []Provenance `json:"layers"`
}

// Provenance details what one layer holds for a traced key.
type Provenance struct {
	Role  string `json:"role"`
	Value any    `json:"value,omitempty"`
	Found bool   `json:"found"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// TraceKey reports, layer by layer, what the map holds for key. Both layers
// are always listed; Found distinguishes populated from empty.
func (m *Map[K, V]) TraceKey(key K) Trace {
	trace := Trace{Key: keyString(key)}
	current := Provenance{Role: RoleCurrent}
	previous := Provenance{Role: RolePrevious}
	if e := m.tbl.find(key); e != nil {
		if v, ok := e.Current(); ok {
			current.Value, current.Found = v, true
		}
		if v, ok := e.Previous(); ok {
			previous.Value, previous.Found = v, true
		}
	}
	trace.Layers = []Provenance{current, previous}
	return trace
}
