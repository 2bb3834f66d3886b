// Package account implements the account records kept in the mudb file and
// the manager that adds, edits, deletes, clears and lists them.
package account

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// JSON keys of the known record fields.
const (
	KeyD              = "d"
	KeyEnable         = "enable"
	KeyForbiddenPort  = "forbidden_port"
	KeyMethod         = "method"
	KeyObfs           = "obfs"
	KeyPasswd         = "passwd"
	KeyPort           = "port"
	KeyProtocol       = "protocol"
	KeyTransferEnable = "transfer_enable"
	KeyU              = "u"
	KeyUser           = "user"
)

// Record is one account entry.
//
// Keys the struct does not know about are kept in Extra and written back
// unchanged. ForbiddenPort is omitted from the file when empty.
//
// A decoded record remembers which known keys the file carried. Missing keys
// stay missing on save, and a known value the struct cannot hold exactly
// (a float counter, a numeric enable) is written back in its original form
// until the field is assigned through a Patch.
type Record struct {
	D              int64
	Enable         bool
	ForbiddenPort  string
	Method         string
	Obfs           string
	Passwd         string
	Port           int
	Protocol       string
	TransferEnable int64
	U              int64
	User           string

	Extra map[string]json.RawMessage

	absent keySet
	raw    map[string]json.RawMessage
}

// keySet is a bitmask over the known keys that are always emitted when set.
type keySet uint16

var keyBits = map[string]keySet{
	KeyD:              1 << 0,
	KeyEnable:         1 << 1,
	KeyMethod:         1 << 2,
	KeyObfs:           1 << 3,
	KeyPasswd:         1 << 4,
	KeyPort:           1 << 5,
	KeyProtocol:       1 << 6,
	KeyTransferEnable: 1 << 7,
	KeyU:              1 << 8,
	KeyUser:           1 << 9,
}

const allKeys keySet = 1<<10 - 1

func isKnown(key string) bool {
	_, ok := keyBits[key]
	return ok || key == KeyForbiddenPort
}

// Collection is the ordered list of records held in one database file.
type Collection struct {
	Records []Record
}

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// Has reports whether key is present in the record.
func (r Record) Has(key string) bool {
	_, ok := r.values()[key]
	return ok
}

// values returns the fields present in the record keyed by their JSON name.
func (r Record) values() map[string]any {
	m := make(map[string]any, len(keyBits)+len(r.Extra))
	put := func(key string, v any) {
		if r.absent&keyBits[key] == 0 {
			m[key] = v
		}
	}
	put(KeyD, r.D)
	put(KeyEnable, r.Enable)
	put(KeyMethod, r.Method)
	put(KeyObfs, r.Obfs)
	put(KeyPasswd, r.Passwd)
	put(KeyPort, r.Port)
	put(KeyProtocol, r.Protocol)
	put(KeyTransferEnable, r.TransferEnable)
	put(KeyU, r.U)
	put(KeyUser, r.User)
	if r.ForbiddenPort != "" {
		m[KeyForbiddenPort] = r.ForbiddenPort
	}
	for k, v := range r.Extra {
		if isKnown(k) {
			continue
		}
		m[k] = v
	}
	for k, v := range r.raw {
		m[k] = v
	}
	return m
}

// set marks key as assigned by the caller, dropping any preserved raw form.
func (r *Record) set(key string) {
	r.absent &^= keyBits[key]
	delete(r.raw, key)
}

// keep stores the original bytes of a known key.
func (r *Record) keep(key string, value json.RawMessage) {
	if r.raw == nil {
		r.raw = make(map[string]json.RawMessage)
	}
	r.raw[key] = append(json.RawMessage(nil), value...)
}

// Keys returns the JSON keys present in the record, sorted.
func (r Record) Keys() []string {
	m := r.values()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON encodes the record as an object with sorted keys.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.values()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes an account object. Any JSON object is accepted.
// Counters and the port take integers directly and floats truncated toward
// zero, enable takes booleans or numbers. Values outside those forms leave
// the field zero and are preserved verbatim.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = Record{absent: allKeys}
	for key, value := range fields {
		var exact bool
		switch key {
		case KeyD:
			r.D, exact = decodeInt(value)
		case KeyU:
			r.U, exact = decodeInt(value)
		case KeyTransferEnable:
			r.TransferEnable, exact = decodeInt(value)
		case KeyPort:
			var n int64
			n, exact = decodeInt(value)
			r.Port = int(n)
		case KeyEnable:
			r.Enable, exact = decodeBool(value)
		case KeyForbiddenPort:
			exact = decodeString(value, &r.ForbiddenPort) && r.ForbiddenPort != ""
		case KeyMethod:
			exact = decodeString(value, &r.Method)
		case KeyObfs:
			exact = decodeString(value, &r.Obfs)
		case KeyPasswd:
			exact = decodeString(value, &r.Passwd)
		case KeyProtocol:
			exact = decodeString(value, &r.Protocol)
		case KeyUser:
			exact = decodeString(value, &r.User)
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]json.RawMessage)
			}
			r.Extra[key] = append(json.RawMessage(nil), value...)
			continue
		}
		r.absent &^= keyBits[key]
		if !exact {
			r.keep(key, value)
		}
	}
	return nil
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	r.Extra = cloneRaw(r.Extra)
	r.raw = cloneRaw(r.raw)
	return r
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := &Collection{Records: make([]Record, len(c.Records))}
	for i, r := range c.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// decodeInt reads a JSON number. Floats are truncated toward zero and
// clamped to the int64 range. exact is true only for a plain integer literal,
// which re-encodes to the same bytes.
func decodeInt(raw json.RawMessage) (n int64, exact bool) {
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, false
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, false
	}
	if i, err := num.Int64(); err == nil {
		return i, num.String() == strconv.FormatInt(i, 10)
	}
	f, err := num.Float64()
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64, false
	case f <= math.MinInt64:
		return math.MinInt64, false
	}
	return int64(f), false
}

// decodeBool reads true or false exactly, and a number as non-zero.
func decodeBool(raw json.RawMessage) (v bool, exact bool) {
	switch string(raw) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return false, false
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return false, false
	}
	f, err := num.Float64()
	return err == nil && f != 0, false
}

func decodeString(raw json.RawMessage, dst *string) bool {
	if len(raw) == 0 || raw[0] != '"' {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
