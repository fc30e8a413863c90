package sailthru

import "strconv"

// maxFlattenDepth bounds recursion on externally supplied event data.
// Anything nested deeper is kept as-is under its constructed key.
const maxFlattenDepth = 32

// Flatten collapses nested objects and arrays into a single-level map with
// underscore-joined path keys; array elements key on their numeric index.
// {"a": {"b": 1}} becomes {"a_b": 1} and {"a": [{"b": 1}]} becomes {"a_0_b": 1}.
// The input is not mutated.
func Flatten(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for key, value := range props {
		flattenInto(out, key, value, 0)
	}
	return out
}

func flattenInto(out map[string]interface{}, path string, value interface{}, depth int) {
	if depth >= maxFlattenDepth {
		out[path] = value
		return
	}
	switch typed := value.(type) {
	case map[string]interface{}:
		for key, child := range typed {
			flattenInto(out, path+"_"+key, child, depth+1)
		}
	case []interface{}:
		for i, child := range typed {
			flattenInto(out, path+"_"+strconv.Itoa(i), child, depth+1)
		}
	default:
		out[path] = value
	}
}
