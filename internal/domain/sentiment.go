package domain

import "strings"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"

	// SentimentServiceError marks a review whose classification failed.
	// It means "unknown", not neutral.
	SentimentServiceError Sentiment = "Service Error"
)

// Scores is a polarity decomposition of a text, each component in [0,1].
type Scores struct {
	Positive float64 `json:"pos"`
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
}

type Classification struct {
	Label  Sentiment `json:"sentiment"`
	Scores *Scores   `json:"scores,omitempty"`
}

// LabelFor picks the dominant label. A label wins only when it is strictly
// greater than both others; every tie falls through to neutral.
func LabelFor(s Scores) Sentiment {
	switch {
	case s.Negative > s.Positive && s.Negative > s.Neutral:
		return SentimentNegative
	case s.Positive > s.Negative && s.Positive > s.Neutral:
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}

// NormalizeLabel maps a label reported by the scoring service onto the
// known set. Anything unrecognised becomes SentimentServiceError.
func NormalizeLabel(raw string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(raw))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	case SentimentNeutral:
		return SentimentNeutral
	}
	return SentimentServiceError
}
