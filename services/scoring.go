package services

import "strings"

// Scoring is a fixed, deterministic computation. Callers are responsible
// for rejecting malformed input (rating outside 1-5, empty text) before
// persisting anything; the functions themselves never fail and treat an
// empty string as zero characters and zero words.
const (
	basePoints         = 10
	qualityBonus       = 20
	strongOpinionBonus = 5
	lengthBonusCap     = 100
	qualityWordFloor   = 100
)

// PointsBreakdown itemizes the components of a review's score.
type PointsBreakdown struct {
	Base          int `json:"base_points"`
	RatingBonus   int `json:"rating_bonus"`
	LengthBonus   int `json:"length_bonus"`
	QualityBonus  int `json:"quality_bonus"`
	StrongOpinion int `json:"strong_opinion_bonus"`
	WordCount     int `json:"word_count"`
	Total         int `json:"total"`
}

// ScorePoints returns the point total for a review.
func ScorePoints(rating int, text string) int {
	return ScoreBreakdown(rating, text).Total
}

// ScoreBreakdown computes every scoring component for a review:
// 10 base, rating*2, one point per 10 characters capped at 100,
// +20 when the text runs past 100 words, +5 for a 1 or 5 star rating.
func ScoreBreakdown(rating int, text string) PointsBreakdown {
	b := PointsBreakdown{
		Base:        basePoints,
		RatingBonus: rating * 2,
		WordCount:   len(strings.Fields(text)),
	}

	b.LengthBonus = len(text) / 10
	if b.LengthBonus > lengthBonusCap {
		b.LengthBonus = lengthBonusCap
	}
	if b.WordCount > qualityWordFloor {
		b.QualityBonus = qualityBonus
	}
	if rating == 1 || rating == 5 {
		b.StrongOpinion = strongOpinionBonus
	}

	b.Total = b.Base + b.RatingBonus + b.LengthBonus + b.QualityBonus + b.StrongOpinion
	return b
}

// wordCount counts whitespace-separated tokens.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
