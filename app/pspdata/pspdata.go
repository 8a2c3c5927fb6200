// Package pspdata implements the additional-data blob attached to every
// ledger row: an insertion-ordered string-to-string mapping serialized as a
// single JSON object with no nested structure.
package pspdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Keys shared between the gateway facade and the ledger merge rules.
const (
	PSPReferenceKey = "pspReference"

	// Local call-error markers, purged once a gateway reference corroborates
	// that the call actually reached the gateway.
	CallErrorStatusKey  = "adyenCallErrorStatus"
	ExceptionClassKey   = "exceptionClass"
	ExceptionMessageKey = "exceptionMessage"

	// 3-D Secure step tokens.
	MDKey                 = "MD"
	PaReqKey              = "PaReq"
	PaResKey              = "PaRes"
	TermURLKey            = "TermUrl"
	IssuerURLKey          = "issuerUrl"
	ThreeDS2TokenKey      = "threeDS2Token"
	ThreeDSServerTransKey = "threeDSServerTransID"
	ThreeDSCompIndKey     = "threeDSCompInd"
	ACSURLKey             = "acsUrl"
	ACSTransIDKey         = "acsTransID"
)

var errNotAnObject = errors.New("additional data is not a JSON object")

// Data is an ordered mapping. The zero value is not usable; construct with New
// or Parse.
type Data struct {
	keys   []string
	values map[string]string
}

func New() *Data {
	return &Data{values: map[string]string{}}
}

// Parse decodes a serialized blob, preserving key order. An empty blob yields
// an empty mapping. Non-string values are stringified; the store only ever
// writes flat string maps, but older rows may carry numbers or booleans.
func Parse(blob string) (*Data, error) {
	data := New()
	if strings.TrimSpace(blob) == "" {
		return data, nil
	}

	dec := json.NewDecoder(strings.NewReader(blob))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotAnObject
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errNotAnObject
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := valTok.(type) {
		case string:
			data.Set(key, v)
		case nil:
			data.Set(key, "")
		case json.Delim:
			return nil, errNotAnObject
		default:
			data.Set(key, fmt.Sprint(v))
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errNotAnObject
	}
	return data, nil
}

func (d *Data) Len() int {
	return len(d.keys)
}

// Keys returns the key set in insertion order.
func (d *Data) Keys() []string {
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys
}

func (d *Data) Get(key string) (string, bool) {
	value, ok := d.values[key]
	return value, ok
}

// Set inserts or overwrites a key. Overwriting keeps the original position.
func (d *Data) Set(key, value string) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

func (d *Data) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Merge applies other on top of d: same-key entries overwrite in place,
// new keys are appended in other's order, unrelated keys are preserved.
func (d *Data) Merge(other *Data) {
	if other == nil {
		return
	}
	for _, key := range other.keys {
		d.Set(key, other.values[key])
	}
}

// PurgeCallErrors drops the local call-error markers. Called when a merge
// leaves a PSP reference on the row: an error call later corroborated by a
// gateway reference is no longer a local-only failure.
func (d *Data) PurgeCallErrors() {
	d.Delete(CallErrorStatusKey)
	d.Delete(ExceptionClassKey)
	d.Delete(ExceptionMessageKey)
}

// String serializes to a JSON object in insertion order.
func (d *Data) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encKey, _ := json.Marshal(key)
		encVal, _ := json.Marshal(d.values[key])
		buf.Write(encKey)
		buf.WriteByte(':')
		buf.Write(encVal)
	}
	buf.WriteByte('}')
	return buf.String()
}

// FromMap builds a mapping from a plain map with keys in sorted order, so the
// serialized form is deterministic for callers that do not care about order.
func FromMap(src map[string]string) *Data {
	data := New()
	keys := make([]string, 0, len(src))
	for key := range src {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		data.Set(key, src[key])
	}
	return data
}
