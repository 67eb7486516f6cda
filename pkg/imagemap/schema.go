// pkg/imagemap/schema.go
package imagemap

// Resolution tiers, largest first.
const (
	Tier1280 = "1280"
	Tier696  = "696"
)

// LookupTiers is the order large images are resolved in.
var LookupTiers = []string{Tier1280, Tier696}

// Entry maps a resolution tier to image URLs.
type Entry map[string][]string

// ImageMap maps a hotel key (wvId) to its precomputed large images.
type ImageMap map[string]Entry
