// internal/search/amenities.go
package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"package-provider/internal/models"
)

// Values must equal a token exactly; "Ja, mod betaling" or "Jacuzzi" pass
// through as text.
var (
	yesValues = map[string]bool{"Ja": true, "1": true, "true": true}
	noValues  = map[string]bool{"Nej": true, "false": true}
)

// FormatAmenities turns raw hotel facts into a flat amenity map.
// Anything other than a JSON array yields an empty map; entries that do not
// decode as a fact are skipped on their own.
func FormatAmenities(raw json.RawMessage) map[string]interface{} {
	var entries []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return map[string]interface{}{}
	}

	facts := make([]models.Fact, 0, len(entries))
	for _, entry := range entries {
		var f models.Fact
		if json.Unmarshal(entry, &f) != nil {
			continue
		}
		facts = append(facts, f)
	}
	return AmenitiesFromFacts(facts)
}

// AmenitiesFromFacts applies the amenity rules to decoded facts. Applying it
// to facts rebuilt from its own output returns the same map.
func AmenitiesFromFacts(facts []models.Fact) map[string]interface{} {
	out := make(map[string]interface{}, len(facts))
	for _, f := range facts {
		key := amenityKey(f)
		if key == "" {
			continue
		}
		out[key] = amenityValue(f.Value)
	}
	return out
}

func amenityKey(f models.Fact) string {
	var id string
	switch v := f.ID.(type) {
	case nil:
		return ""
	case string:
		id = v
		if isDigits(v) && f.Name != "" {
			id = f.Name
		}
	case float64, json.Number, int, int64:
		id = fmt.Sprint(v)
		if f.Name != "" {
			id = f.Name
		}
	default:
		id = fmt.Sprint(v)
	}

	if strings.Contains(strings.ToLower(id), "internet") {
		id = "wifi"
	}
	return strings.ToLower(id)
}

func amenityValue(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch {
	case yesValues[s]:
		return true
	case noValues[s]:
		return false
	default:
		return s
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
