package account

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Byte tiers used by FormatBytes.
const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// FormatBytes renders a byte count for display. Values under 4 KiB are shown
// as the bare integer; larger values are scaled to the largest of K, M or G
// whose quotient is still at least 4.
func FormatBytes(v int64) string {
	switch {
	case v/kib < 4:
		return strconv.FormatInt(v, 10)
	case v/mib < 4:
		return formatScaled(v, kib) + "  K bytes"
	case v/gib < 4:
		return formatScaled(v, mib) + "  M bytes"
	default:
		return formatScaled(v, gib) + "  G bytes"
	}
}

// formatScaled divides v by unit and prints the shortest decimal that
// round-trips, always with a fractional part.
func formatScaled(v, unit int64) string {
	s := strconv.FormatFloat(float64(v)/float64(unit), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Summary renders every field of r on its own line as "    key : value",
// each line preceded by a newline. Byte counters go through FormatBytes.
func (r Record) Summary() string {
	values := r.values()

	var b strings.Builder
	for _, key := range r.Keys() {
		b.WriteString("\n    ")
		b.WriteString(key)
		b.WriteString(" : ")
		b.WriteString(formatValue(key, values[key]))
	}
	return b.String()
}

func formatValue(key string, v any) string {
	switch val := v.(type) {
	case int64:
		switch key {
		case KeyTransferEnable, KeyU, KeyD:
			return FormatBytes(val)
		}
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case string:
		return val
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(val, &s); err == nil {
			return s
		}
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
