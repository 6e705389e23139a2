package persist

import (
	"encoding/json"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Codec turns values into stored bytes.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec stores values as JSON, matching what the browser persists.
type JSONCodec struct{}

func (JSONCodec) Name() string                       { return "json" }
func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// CBORCodec stores values with core deterministic CBOR encoding.
type CBORCodec struct{}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("persist: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("persist: CBOR decoder initialization failed: " + err.Error())
	}
}

func (CBORCodec) Name() string                       { return "cbor" }
func (CBORCodec) Marshal(v any) ([]byte, error)      { return cborEnc.Marshal(v) }
func (CBORCodec) Unmarshal(data []byte, v any) error { return cborDec.Unmarshal(data, v) }

// CodecByName resolves a configured codec name, defaulting to JSON.
func CodecByName(name string) Codec {
	if name == "cbor" {
		return CBORCodec{}
	}
	return JSONCodec{}
}
