// internal/models/envelope.go
package models

// OutputEnvelope is one push to the client. Items holds at most one result;
// the completion envelope has no items and SearchComplete set.
type OutputEnvelope struct {
	SearchID       string         `json:"searchId"`
	UserID         string         `json:"userId"`
	ConnectionID   string         `json:"connectionId"`
	Items          []MappedResult `json:"items"`
	SearchComplete bool           `json:"searchComplete"`
}

func NewResultEnvelope(p SearchParameters, result MappedResult) OutputEnvelope {
	return OutputEnvelope{
		SearchID:     p.SearchID,
		UserID:       p.UserID,
		ConnectionID: p.ConnectionID,
		Items:        []MappedResult{result},
	}
}

func NewCompletionEnvelope(p SearchParameters) OutputEnvelope {
	return OutputEnvelope{
		SearchID:       p.SearchID,
		UserID:         p.UserID,
		ConnectionID:   p.ConnectionID,
		Items:          []MappedResult{},
		SearchComplete: true,
	}
}

// RunSummary is what a trigger gets back once a run has finished.
type RunSummary struct {
	RunID      string `json:"runId"`
	SearchID   string `json:"searchId"`
	Requested  int    `json:"requested"`
	Delivered  int    `json:"delivered"`
	NoOffers   int    `json:"noOffers"`
	NoResult   int    `json:"noResult"`
	Skipped    int    `json:"skipped"`
	Cancelled  bool   `json:"cancelled"`
	DurationMs int64  `json:"durationMs"`
}
