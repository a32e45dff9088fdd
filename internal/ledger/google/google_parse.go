package google

import (
	"fmt"
	"strings"
)

// parseStore turns the rows of a Key | Value sheet into a map. An optional
// header row is skipped, rows without a key are ignored and a repeated key
// keeps its last value.
func parseStore(values [][]any) map[string]string {
	out := make(map[string]string, len(values))
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		key := cellString(row[0])
		if key == "" {
			continue
		}
		if i == 0 && strings.EqualFold(key, "key") {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = cellString(row[1])
		}
		out[key] = value
	}
	return out
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
