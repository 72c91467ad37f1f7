// Package sentiment classifies review text through the sentiment analyzer
// service (GET /analyze/{text}).
package sentiment

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"dealership_api/internal/adapters/upstream"
	"dealership_api/internal/domain"
)

// analyzeResponse accepts both the plain label and raw polarity scores.
type analyzeResponse struct {
	Sentiment string   `json:"sentiment"`
	Pos       *float64 `json:"pos"`
	Neg       *float64 `json:"neg"`
	Neu       *float64 `json:"neu"`
}

type Client struct{ up *upstream.Client }

func New(up *upstream.Client) *Client { return &Client{up: up} }

// Classify never returns an error. Any failure is reported as
// domain.SentimentServiceError. Blank text scores zero everywhere and is
// neutral without a round trip.
func (c *Client) Classify(ctx context.Context, text string) domain.Classification {
	if strings.TrimSpace(text) == "" {
		return domain.Classification{Label: domain.LabelFor(domain.Scores{})}
	}

	var resp analyzeResponse
	if err := c.up.Get(ctx, "/analyze/"+url.PathEscape(text), nil, &resp); err != nil {
		log.Warn().Err(err).Msg("sentiment classification failed")
		return domain.Classification{Label: domain.SentimentServiceError}
	}

	if resp.Pos != nil && resp.Neg != nil && resp.Neu != nil {
		s := domain.Scores{Positive: *resp.Pos, Negative: *resp.Neg, Neutral: *resp.Neu}
		return domain.Classification{Label: domain.LabelFor(s), Scores: &s}
	}

	label := domain.NormalizeLabel(resp.Sentiment)
	if label == domain.SentimentServiceError {
		log.Warn().Str("label", resp.Sentiment).Msg("sentiment service returned an unknown label")
	}
	return domain.Classification{Label: label}
}
