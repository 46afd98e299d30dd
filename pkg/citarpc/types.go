/*
Package citarpc contains a set of types used for JSON-RPC communication with
CITA nodes. It defines basic request parameter and response types as well as
the errors and additional parameters used for specific requests.
*/
package citarpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	ojson "github.com/nspcc-dev/go-ordered-json"
)

const (
	// JSONRPCVersion is the only JSON-RPC protocol version supported.
	JSONRPCVersion = "2.0"

	// Well-known request keys.
	keyJSONRPC = "jsonrpc"
	keyMethod  = "method"
	keyParams  = "params"
	keyID      = "id"
)

var (
	// ErrNoMethod is returned for a parameter set without "method".
	ErrNoMethod = errors.New("no method in request parameters")
	// ErrInvalidResponse is returned for a response that has neither or both
	// of "result" and "error".
	ErrInvalidResponse = errors.New("invalid JSON-RPC response")
)

// Params is an ordered set of JSON-RPC request fields. Values can be anything
// that can be marshaled to JSON: integers, strings, lists, maps or nested
// ordered objects. The order of insertion is preserved on the wire. Params
// is immutable, Insert returns an updated copy, so the same set can be safely
// reused for many requests.
type Params struct {
	members ojson.OrderedObject
}

// NewParams returns an empty parameter set.
func NewParams() Params {
	return Params{}
}

// NewRequest returns a parameter set for the given method and positional
// parameters. Nil params are sent as an empty array since CITA nodes don't
// accept a missing "params".
func NewRequest(method string, params ...any) Params {
	if params == nil {
		params = []any{}
	}
	return NewParams().
		Insert(keyJSONRPC, JSONRPCVersion).
		Insert(keyMethod, method).
		Insert(keyParams, params)
}

// Insert returns a copy of p with key set to value. An existing key keeps its
// position, a new one is appended.
func (p Params) Insert(key string, value any) Params {
	members := make(ojson.OrderedObject, len(p.members), len(p.members)+1)
	copy(members, p.members)
	for i := range members {
		if members[i].Key == key {
			members[i].Value = value
			return Params{members: members}
		}
	}
	return Params{members: append(members, ojson.Member{Key: key, Value: value})}
}

// Get returns the value of the key.
func (p Params) Get(key string) (any, bool) {
	for _, m := range p.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns parameter names in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p.members))
	for _, m := range p.members {
		keys = append(keys, m.Key)
	}
	return keys
}

// Len returns the number of parameters.
func (p Params) Len() int {
	return len(p.members)
}

// Method returns the method name or an empty string if there is none.
func (p Params) Method() string {
	v, _ := p.Get(keyMethod)
	s, _ := v.(string)
	return s
}

// WithID returns a copy of p ready to be sent: with the given id and the
// protocol version (if missing). It fails if there is no method.
func (p Params) WithID(id uint64) (Params, error) {
	if len(p.Method()) == 0 {
		return Params{}, ErrNoMethod
	}
	if _, ok := p.Get(keyJSONRPC); !ok {
		p = p.Insert(keyJSONRPC, JSONRPCVersion)
	}
	return p.Insert(keyID, id), nil
}

// MarshalJSON implements the json.Marshaler interface.
func (p Params) MarshalJSON() ([]byte, error) {
	if p.members == nil {
		return []byte("{}"), nil
	}
	return ojson.Marshal(p.members)
}

// UnmarshalJSON implements the json.Unmarshaler interface, keys order is
// preserved.
func (p *Params) UnmarshalJSON(data []byte) error {
	d := ojson.NewDecoder(bytes.NewReader(data))
	d.UseOrderedObject()
	var v any
	if err := d.Decode(&v); err != nil {
		return err
	}
	members, ok := v.(ojson.OrderedObject)
	if !ok {
		return fmt.Errorf("parameters must be an object, got %T", v)
	}
	p.members = members
	return nil
}

// Response represents a standard raw JSON-RPC 2.0
// response: http://www.jsonrpc.org/specification#response_object.
// Exactly one of Result and Error is set for a valid response. Result holds
// the raw JSON value which can be null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. It distinguishes
// a null result from a missing one and validates the response.
func (r *Response) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("%w: null", ErrInvalidResponse)
	}
	*r = Response{}
	if v, ok := fields[keyJSONRPC]; ok {
		if err := json.Unmarshal(v, &r.JSONRPC); err != nil {
			return fmt.Errorf("%w: bad version: %v", ErrInvalidResponse, err)
		}
	}
	r.ID = fields[keyID]
	if v, ok := fields["error"]; ok && !isNull(v) {
		r.Error = new(Error)
		if err := json.Unmarshal(v, r.Error); err != nil {
			return fmt.Errorf("%w: bad error object: %v", ErrInvalidResponse, err)
		}
	}
	if v, ok := fields["result"]; ok && (r.Error == nil || !isNull(v)) {
		r.Result = v
	}
	if (r.Result == nil) == (r.Error == nil) {
		return fmt.Errorf("%w: exactly one of result and error expected", ErrInvalidResponse)
	}
	return nil
}

// IDUint64 returns the numeric response id.
func (r *Response) IDUint64() (uint64, error) {
	var id uint64
	if err := json.Unmarshal(r.ID, &id); err != nil {
		return 0, fmt.Errorf("non-numeric id %s: %w", r.ID, err)
	}
	return id, nil
}

// IsNull returns true if the result is JSON null (or missing).
func (r *Response) IsNull() bool {
	return isNull(r.Result)
}

// IsMap returns true if the result is a JSON object.
func (r *Response) IsMap() bool {
	b := bytes.TrimSpace(r.Result)
	return len(b) > 0 && b[0] == '{'
}

// Map returns the result as a map of raw values, it fails if the result is
// not an object.
func (r *Response) Map() (map[string]json.RawMessage, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	if !r.IsMap() {
		return nil, fmt.Errorf("result is not an object: %s", r.Result)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(r.Result, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Scalar returns the result decoded as a string, a number (json.Number) or a
// bool. It fails for objects, arrays and errors.
func (r *Response) Scalar() (any, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	d := json.NewDecoder(bytes.NewReader(r.Result))
	d.UseNumber()
	var v any
	if err := d.Decode(&v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case string, json.Number, bool:
		return v, nil
	default:
		return nil, fmt.Errorf("result is not a scalar: %s", r.Result)
	}
}

// DecodeResult unmarshals the result into v, the JSON-RPC error is returned
// as is if present.
func (r *Response) DecodeResult(v any) error {
	if r.Error != nil {
		return r.Error
	}
	return json.Unmarshal(r.Result, v)
}

func isNull(v json.RawMessage) bool {
	b := bytes.TrimSpace(v)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}
