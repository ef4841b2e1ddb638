package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Manifests are small map-like structures, so portability matters more than
// throughput here. Implement Codec to plug in something else wherever a
// codec is accepted.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used for newly published manifests.
//
// NOTE: This affects newly-created manifests only. Existing objects are
// self-describing (they record the codec name) and are opened by selecting
// the codec by name.
var Default Codec = JSON{}
