// pkg/imagemap/imagemap.go
package imagemap

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

func Load(path string) (ImageMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m ImageMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse image map %s: %w", path, err)
	}
	if m == nil {
		m = ImageMap{}
	}
	return m, nil
}

// Save writes the map with stable key order and two-space indentation.
func Save(path string, m ImageMap) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Lookup returns the first non-empty tier for hotelKey. A nil map is valid
// and always misses.
func (m ImageMap) Lookup(hotelKey string) []string {
	entry, ok := m[hotelKey]
	if !ok {
		return nil
	}
	for _, tier := range LookupTiers {
		if urls := entry[tier]; len(urls) > 0 {
			return urls
		}
	}
	return nil
}

// Add appends url to the hotel's tier, skipping duplicates.
func (m ImageMap) Add(hotelKey, tier, url string) bool {
	entry, ok := m[hotelKey]
	if !ok {
		entry = Entry{}
		m[hotelKey] = entry
	}
	for _, existing := range entry[tier] {
		if existing == url {
			return false
		}
	}
	entry[tier] = append(entry[tier], url)
	return true
}

// Keys returns hotel keys in sorted order.
func (m ImageMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate reports entries that can never produce an image.
func (m ImageMap) Validate() []string {
	known := map[string]bool{}
	for _, t := range LookupTiers {
		known[t] = true
	}

	var problems []string
	for _, key := range m.Keys() {
		entry := m[key]
		if len(entry) == 0 {
			problems = append(problems, fmt.Sprintf("%s: no tiers", key))
			continue
		}
		for tier, urls := range entry {
			if !known[tier] {
				problems = append(problems, fmt.Sprintf("%s: unknown tier %q", key, tier))
			}
			for _, u := range urls {
				if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
					problems = append(problems, fmt.Sprintf("%s/%s: not an http url: %q", key, tier, u))
				}
			}
		}
		if m.Lookup(key) == nil {
			problems = append(problems, fmt.Sprintf("%s: all known tiers empty", key))
		}
	}
	sort.Strings(problems)
	return problems
}
