package domain

import (
	"strconv"
	"time"
)

// Tone is the presentation hint attached to a classification label.
type Tone string

const (
	ToneGood    Tone = "good"
	ToneBad     Tone = "bad"
	ToneNeutral Tone = "neutral"
)

// Classification is the categorical verdict produced by the validation engine.
type Classification struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

// Analysis is the validation engine's answer for a piece of text.
type Analysis struct {
	Score          float64        `json:"score"`
	Classification Classification `json:"classification"`
	Reasons        []string       `json:"reasons"`
	Confidence     float64        `json:"confidence"`
}

// ValidationRecord is the append-only audit row kept for every analysis.
// UserID is nil for anonymous callers.
type ValidationRecord struct {
	ID             int64
	UserID         *int64
	Text           string
	SourceURL      string
	Score          float64
	Classification string
	Reasons        []string
	CreatedAt      time.Time
}

// OwnerKey returns a stable key used to shard records by owner.
func (r ValidationRecord) OwnerKey() string {
	if r.UserID == nil {
		return "anonymous"
	}
	return "user:" + strconv.FormatInt(*r.UserID, 10)
}
