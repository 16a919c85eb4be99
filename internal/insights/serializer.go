package insights

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// Telemetry properties are flat string pairs with engine-imposed size
// caps. Oversized entries are dropped with a warning, not an error.
const (
	maxKeySize   = 150
	maxValueSize = 8192
)

// Property key prefixes. A "$" marks promoted metadata that exists only
// for query predicates and is excluded when the payload is rebuilt. A "_"
// marks a JSON-encoded value that must be decoded on read.
const (
	metaPrefix    = "$"
	encodedPrefix = "_"
)

var isoDateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)

// Properties is the flattened key/value form of an event payload.
type Properties map[string]string

// Serialize flattens an object into telemetry properties. String fields
// keep their key and value as-is; anything else is JSON-encoded under a
// "_"-prefixed key. Entries over the engine's size caps are skipped.
func Serialize(fields map[string]any, logger *slog.Logger) Properties {
	if logger == nil {
		logger = slog.Default()
	}
	props := make(Properties, len(fields))
	for key, value := range fields {
		if len(key) > maxKeySize {
			logger.Warn("skipping serialization of oversized property key", "key_size", len(key))
			continue
		}

		strval, isstr := value.(string)
		if !isstr {
			encoded, err := json.Marshal(value)
			if err != nil {
				logger.Warn("skipping serialization of unencodable property", "key", key, "error", err)
				continue
			}
			key = encodedPrefix + key
			strval = string(encoded)
		}
		if len(strval) > maxValueSize {
			logger.Warn("skipping serialization of oversized property value", "key", key, "value_size", len(strval))
			continue
		}

		props[key] = strval
	}
	return props
}

// SerializeMetadata copies promoted query fields into props under the
// "$" prefix so they can appear in filter predicates.
func SerializeMetadata(props Properties, meta map[string]string) {
	for key, value := range meta {
		props[metaPrefix+key] = value
	}
}

// Deserialize rebuilds the original object from telemetry properties.
// Promoted "$" keys are excluded, "_" keys are JSON-decoded, and
// ISO-8601-looking string values become time values.
func Deserialize(props Properties) (map[string]any, error) {
	fields := make(map[string]any, len(props))
	for key, strval := range props {
		if strings.HasPrefix(key, metaPrefix) {
			continue
		}

		if strings.HasPrefix(key, encodedPrefix) {
			var value any
			if err := json.Unmarshal([]byte(strval), &value); err != nil {
				return nil, fmt.Errorf("decoding property %q: %w", key, err)
			}
			fields[strings.TrimPrefix(key, encodedPrefix)] = reviveDates(value)
			continue
		}

		fields[key] = reviveDates(strval)
	}
	return fields, nil
}

func reviveDates(value any) any {
	switch v := value.(type) {
	case string:
		if isoDateRE.MatchString(v) {
			if ts, err := time.Parse(time.RFC3339, v); err == nil {
				return ts
			}
		}
		return v
	case map[string]any:
		for key, nested := range v {
			v[key] = reviveDates(nested)
		}
		return v
	case []any:
		for i, nested := range v {
			v[i] = reviveDates(nested)
		}
		return v
	default:
		return value
	}
}
