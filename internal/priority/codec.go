package priority

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format identifies which persisted representation an order was read from.
type Format int

const (
	FormatEmpty Format = iota
	FormatJSON
	// FormatLegacyRefs is the comma-separated "((id)),((id))" form.
	FormatLegacyRefs
	// FormatWeightMap is a JSON object of id -> numeric weight.
	FormatWeightMap
	FormatMalformed
)

func (f Format) String() string {
	switch f {
	case FormatEmpty:
		return "empty"
	case FormatJSON:
		return "json"
	case FormatLegacyRefs:
		return "legacy-refs"
	case FormatWeightMap:
		return "weight-map"
	case FormatMalformed:
		return "malformed"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// NeedsMigration reports whether the stored value should be rewritten in
// the JSON array form.
func (f Format) NeedsMigration() bool {
	return f == FormatLegacyRefs || f == FormatWeightMap
}

// Decode parses a persisted order. Malformed input yields an empty order
// and FormatMalformed rather than an error.
func Decode(raw string) ([]string, Format) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return []string{}, FormatEmpty
	case strings.HasPrefix(raw, "["):
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return []string{}, FormatMalformed
		}
		return dedupe(ids), FormatJSON
	case strings.HasPrefix(raw, "{"):
		var weights map[string]float64
		if err := json.Unmarshal([]byte(raw), &weights); err != nil {
			return []string{}, FormatMalformed
		}
		return FromWeights(weights).Serialize(), FormatWeightMap
	}
	return decodeLegacy(raw), FormatLegacyRefs
}

func decodeLegacy(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "((") && strings.HasSuffix(p, "))") {
			p = strings.TrimSpace(p[2 : len(p)-2])
		}
		if p != "" {
			ids = append(ids, p)
		}
	}
	return dedupe(ids)
}

// Encode renders ids as a JSON array.
func Encode(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode priority order: %w", err)
	}
	return string(b), nil
}
