package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Archive headers are plain structs of numbers, strings and slices, which
// JSON represents portably. Implement Codec and pass it with WithCodec for
// any other encoding.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
//
// It only affects newly written archives. Existing archives name their codec
// and are decoded with it.
var Default Codec = GoJSON{}
