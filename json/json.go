// Package json is the library-internal JSON codec, a thin wrapper over
// json-iterator in standard-library-compatible mode. Handlers and the file
// configuration loader share it so every emitted byte uses one codec.
package json

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Encoder struct {
	*jsoniter.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		Encoder: json.NewEncoder(w),
	}
}

type Decoder struct {
	*jsoniter.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		Decoder: json.NewDecoder(r),
	}
}

func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

func MarshalToString(v any) (string, error) {
	return json.MarshalToString(v)
}

func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func UnmarshalFromString(data string, v any) error {
	return json.UnmarshalFromString(data, v)
}

func Valid(data []byte) bool {
	return json.Valid(data)
}
