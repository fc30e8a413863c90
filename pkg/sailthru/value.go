package sailthru

import (
	"encoding/json"
	"strconv"

	"sailhook/pkg/event"
)

// truthy reports whether a property value counts as present. Empty strings,
// zero numbers, false, and nil are all absent, matching the short-circuit
// lookup chains the payload mapping is specified with.
func truthy(value interface{}) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		return typed != ""
	case bool:
		return typed
	case float64:
		return typed != 0
	case float32:
		return typed != 0
	case int:
		return typed != 0
	case int64:
		return typed != 0
	case json.Number:
		parsed, err := typed.Float64()
		return err == nil && parsed != 0
	default:
		return true
	}
}

// firstTruthy evaluates candidates left to right and returns the first
// present value, or nil.
func firstTruthy(candidates ...interface{}) interface{} {
	for _, candidate := range candidates {
		if truthy(candidate) {
			return candidate
		}
	}
	return nil
}

// stringValue renders a scalar as a string. Identifiers frequently arrive as
// JSON numbers; anything non-scalar renders empty.
func stringValue(value interface{}) string {
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case json.Number:
		return typed.String()
	default:
		return ""
	}
}

func numberValue(value interface{}) float64 {
	return event.Number(value)
}

// lookup is a nil-safe map read.
func lookup(m map[string]interface{}, key string) interface{} {
	if m == nil {
		return nil
	}
	return m[key]
}

// pickString resolves a precedence chain of candidate values to a string.
func pickString(candidates ...interface{}) string {
	return stringValue(firstTruthy(candidates...))
}
