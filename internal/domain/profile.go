package domain

import "time"

type Mood string

const (
	MoodPositive Mood = "positive"
	MoodNeutral  Mood = "neutral"
	MoodNegative Mood = "negative"
)

var positiveEmotions = map[string]bool{
	"happy":    true,
	"peaceful": true,
	"grateful": true,
	"excited":  true,
	"calm":     true,
}

var negativeEmotions = map[string]bool{
	"sad":         true,
	"angry":       true,
	"worried":     true,
	"overwhelmed": true,
	"stressed":    true,
	"anxious":     true,
	"frustrated":  true,
	"nervous":     true,
}

// Polarity classifies an emotion as positive, negative or neutral.
func (e Emotion) Polarity() Mood {
	key := normalizeName(e.Name)
	switch {
	case positiveEmotions[key]:
		return MoodPositive
	case negativeEmotions[key]:
		return MoodNegative
	default:
		return MoodNeutral
	}
}

type EmotionTrend struct {
	Date      time.Time `json:"date"`
	Emotion   Emotion   `json:"emotion"`
	Intensity Intensity `json:"intensity"`
}

type MonthlyStats struct {
	Month           string         `json:"month"`
	DominantEmotion Emotion        `json:"dominant_emotion"`
	EmotionCounts   map[string]int `json:"emotion_counts"`
}

type ProfileOverview struct {
	Daily       []EmotionTrend `json:"daily"`
	Monthly     []MonthlyStats `json:"monthly"`
	OverallMood Mood           `json:"overall_mood"`
	EntryCount  int            `json:"entry_count"`
}
