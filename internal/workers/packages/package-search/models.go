// internal/workers/packages/package-search/models.go
package packagesearch

import (
	"encoding/json"

	"package-provider/internal/models"
)

// Input accepts either the notification envelope under "event" or the bare
// search message fields as process variables.
type Input struct {
	Event   json.RawMessage       `json:"event,omitempty"`
	Context *models.SearchContext `json:"context,omitempty"`
	Query   *models.SearchQuery   `json:"query,omitempty"`
	Content *models.SearchContent `json:"content,omitempty"`
}

type Output struct {
	SearchSummary models.RunSummary `json:"searchSummary"`
}
