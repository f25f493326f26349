package classifier

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Parsed is the defensively-decoded classification payload.
type Parsed struct {
	Label      string
	Confidence float64
	Canonical  string
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseResponse decodes a loosely-structured classifier response in three
// tiers: strict JSON parse, then the contents of the first fenced code
// block, then a closed failure of ("Unknown", 0.0, "{}"). It never fails and
// the returned confidence is always within [0, 1].
func ParseResponse(raw string) Parsed {
	if parsed, ok := decodePayload(raw); ok {
		return parsed
	}
	if match := fencedBlock.FindStringSubmatch(raw); match != nil {
		if parsed, ok := decodePayload(match[1]); ok {
			return parsed
		}
	}
	return Parsed{Label: "Unknown", Confidence: 0.0, Canonical: "{}"}
}

func decodePayload(s string) (Parsed, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Parsed{}, false
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return Parsed{}, false
	}

	label := stringField(payload, "category")
	if label == "" {
		label = stringField(payload, "document_type")
	}
	if label == "" {
		label = "Unknown"
	}

	return Parsed{
		Label:      label,
		Confidence: ClampConfidence(confidenceField(payload)),
		Canonical:  trimmed,
	}, true
}

func stringField(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// confidenceField tolerates numeric and quoted-numeric confidence values.
func confidenceField(payload map[string]any) float64 {
	switch v := payload["confidence"].(type) {
	case float64:
		return v
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return parsed
		}
	case json.Number:
		if parsed, err := v.Float64(); err == nil {
			return parsed
		}
	}
	return 0.0
}

// ClampConfidence forces a confidence score into [0.0, 1.0].
func ClampConfidence(v float64) float64 {
	if v != v || v < 0 {
		return 0.0
	}
	if v > 1 {
		return 1.0
	}
	return v
}
