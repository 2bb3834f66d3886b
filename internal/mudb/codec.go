// Package mudb stores the account collection as a single JSON array file and
// keeps an ephemeral SQLite index of it for ad-hoc queries.
package mudb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ssrmu/mujson/internal/account"
)

// Indent is the indentation used in the database file.
const Indent = "    "

var errNotArray = errors.New("top-level value is not an array of objects")

// Encode serializes c as a JSON array with sorted object keys, four-space
// indentation and no trailing newline.
func Encode(c *account.Collection) ([]byte, error) {
	records := c.Records
	if records == nil {
		records = []account.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", Indent)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding accounts: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a database document. Every element must be a JSON object.
func Decode(data []byte) (*account.Collection, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errNotArray
		}
		return nil, err
	}
	if elems == nil {
		// literal null
		return nil, errNotArray
	}

	c := &account.Collection{Records: make([]account.Record, 0, len(elems))}
	for i, elem := range elems {
		if t := bytes.TrimSpace(elem); len(t) == 0 || t[0] != '{' {
			return nil, fmt.Errorf("element %d: %w", i, errNotArray)
		}
		var rec account.Record
		if err := json.Unmarshal(elem, &rec); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		c.Records = append(c.Records, rec)
	}
	return c, nil
}
