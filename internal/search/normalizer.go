// internal/search/normalizer.go
package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"package-provider/internal/common/config"
	"package-provider/internal/common/errors"
	"package-provider/internal/common/logger"
	"package-provider/internal/common/validation"
	"package-provider/internal/models"
)

const (
	DefaultStage  = "ci"
	latestVersion = "$LATEST"
	adultAge      = 18
)

var messageSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["context"],
	"properties": {
		"context": {
			"type": "object",
			"required": ["searchId", "connectionId"],
			"properties": {
				"searchId": {"type": "string", "minLength": 1},
				"connectionId": {"type": "string", "minLength": 1},
				"userId": {"type": "string"}
			}
		},
		"query": {
			"type": "object",
			"properties": {
				"passengers": {"type": "array", "items": {"type": "object"}},
				"travelPeriod": {
					"type": "object",
					"properties": {
						"departureBetween": {"type": "array", "items": {"type": "string"}},
						"nights": {"type": "array", "items": {"type": ["integer", "string"]}}
					}
				},
				"departureAirports": {"type": "array", "items": {"type": "string"}}
			}
		},
		"content": {
			"type": "object",
			"properties": {
				"hotels": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`)

// Normalizer turns an inbound search event into SearchParameters.
type Normalizer struct {
	stage            string
	requireHotelKeys bool
	now              func() time.Time
	logger           logger.Logger
}

type NormalizerOption func(*Normalizer)

// WithClock overrides the clock used for age classification.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) { n.now = now }
}

func NewNormalizer(cfg config.SearchConfig, log logger.Logger, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		stage:            ResolveStage(cfg.Stage),
		requireHotelKeys: cfg.RequireHotelKeys,
		now:              time.Now,
		logger:           log,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ResolveStage maps an unset or unversioned deployment token to the default stage.
func ResolveStage(stage string) string {
	stage = strings.TrimSpace(stage)
	if stage == "" || stage == latestVersion {
		return DefaultStage
	}
	return stage
}

// Normalize accepts either an SNS event envelope or a bare search message.
func (n *Normalizer) Normalize(raw []byte) (models.SearchParameters, error) {
	message, err := extractMessage(raw)
	if err != nil {
		return models.SearchParameters{}, err
	}

	result, err := messageSchema.ValidateBytes(message)
	if err != nil {
		return models.SearchParameters{}, errors.NewInvalidSearchEventError(err.Error())
	}
	if !result.Valid {
		return models.SearchParameters{}, errors.NewInvalidSearchEventError(result.Summary())
	}

	var msg models.SearchMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return models.SearchParameters{}, errors.NewInvalidSearchEventError(err.Error())
	}
	return n.NormalizeMessage(msg)
}

// NormalizeMessage builds parameters from an already decoded message.
func (n *Normalizer) NormalizeMessage(msg models.SearchMessage) (models.SearchParameters, error) {
	params := models.SearchParameters{
		SearchID:     msg.Context.SearchID,
		UserID:       msg.Context.UserID,
		ConnectionID: msg.Context.ConnectionID,
		HotelKeys:    []string{},
		Stage:        n.stage,
	}

	if q := msg.Query; q != nil {
		today := n.now()
		for i, p := range q.Passengers {
			birth, ok := parseBirthday(p.Birthday)
			if !ok {
				n.logger.Warn("passenger birthday missing or unparseable, counting as child", map[string]interface{}{
					"searchId":  params.SearchID,
					"passenger": i,
					"birthday":  p.Birthday,
				})
				params.Children++
				continue
			}
			if IsAdult(birth, today) {
				params.Adults++
			} else {
				params.Children++
			}
		}

		if tp := q.TravelPeriod; tp != nil {
			if len(tp.DepartureBetween) > 0 {
				params.DepartureDate = tp.DepartureBetween[0]
			}
			if len(tp.Nights) > 0 {
				d := int(tp.Nights[0])
				params.Duration = &d
			}
		}

		if len(q.DepartureAirports) > 0 {
			if parts := strings.Split(q.DepartureAirports[0], "."); len(parts) > 1 {
				params.DepartureCode = parts[1]
			}
		}
	}

	if msg.Content != nil {
		for _, id := range msg.Content.Hotels {
			if key := HotelKey(id); key != "" {
				params.HotelKeys = append(params.HotelKeys, key)
			}
		}
	}

	if len(params.HotelKeys) == 0 && n.requireHotelKeys {
		return models.SearchParameters{}, errors.NewMissingParameterError("content.hotels")
	}

	n.logger.Debug("search parameters normalized", map[string]interface{}{
		"searchId":  params.SearchID,
		"hotels":    len(params.HotelKeys),
		"adults":    params.Adults,
		"children":  params.Children,
		"stage":     params.Stage,
		"departure": params.DepartureCode,
	})
	return params, nil
}

// HotelKey returns the final dot-delimited segment of a compound identifier,
// e.g. "hotel:NE.wvHotelPartId.197915" -> "197915".
func HotelKey(compound string) string {
	compound = strings.TrimSpace(compound)
	if i := strings.LastIndex(compound, "."); i >= 0 {
		return compound[i+1:]
	}
	return compound
}

// IsAdult reports whether someone born on birth is at least 18 on today.
// Turning 18 today counts as adult.
func IsAdult(birth, today time.Time) bool {
	return AgeOn(birth, today) >= adultAge
}

// AgeOn is the age in whole years; negative for birth dates in the future.
func AgeOn(birth, today time.Time) int {
	by, bm, bd := birth.Date()
	ty, tm, td := today.Date()
	age := ty - by
	if tm < bm || (tm == bm && td < bd) {
		age--
	}
	return age
}

var birthdayLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

func parseBirthday(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func extractMessage(raw []byte) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.NewInvalidSearchEventError("empty event")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errors.NewInvalidSearchEventError(fmt.Sprintf("event is not a JSON object: %v", err))
	}
	if _, ok := probe["Records"]; !ok {
		return raw, nil
	}

	var event models.SNSEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, errors.NewInvalidSearchEventError(fmt.Sprintf("decode SNS envelope: %v", err))
	}
	if len(event.Records) == 0 || event.Records[0].Sns.Message == "" {
		return nil, errors.NewInvalidSearchEventError("SNS envelope has no message")
	}
	return []byte(event.Records[0].Sns.Message), nil
}
