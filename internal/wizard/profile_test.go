package wizard

import (
	"testing"
	"time"

	"github.com/kapu/wellness-companion-go/internal/domain"
)

func entryAt(name string, intensity int, at time.Time) domain.JournalEntry {
	return domain.JournalEntry{
		ID:        name + at.Format(time.RFC3339),
		Timestamp: at,
		Emotion:   domain.ResolveEmotion(name),
		Intensity: domain.Intensity(intensity),
		Content:   "note",
		IsLogged:  true,
	}
}

func TestBuildProfileOverviewEmpty(t *testing.T) {
	overview := BuildProfileOverview(nil)
	if overview.EntryCount != 0 || len(overview.Daily) != 0 || len(overview.Monthly) != 0 {
		t.Fatalf("expected empty overview, got %+v", overview)
	}
	if overview.OverallMood != domain.MoodNeutral {
		t.Fatalf("expected neutral mood, got %s", overview.OverallMood)
	}
}

func TestBuildProfileOverview(t *testing.T) {
	jan2 := time.Date(2026, time.January, 2, 20, 0, 0, 0, time.UTC)
	jan2Morning := time.Date(2026, time.January, 2, 8, 0, 0, 0, time.UTC)
	jan5 := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	feb1 := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)

	overview := BuildProfileOverview([]domain.JournalEntry{
		entryAt("Sad", 9, feb1),
		entryAt("Happy", 6, jan2),
		entryAt("Happy", 4, jan2Morning),
		entryAt("Anxious", 7, jan2),
		entryAt("Happy", 3, jan5),
	})

	if overview.EntryCount != 5 {
		t.Fatalf("expected 5 entries, got %d", overview.EntryCount)
	}

	if len(overview.Daily) != 3 {
		t.Fatalf("expected 3 days, got %d", len(overview.Daily))
	}
	first := overview.Daily[0]
	if !first.Date.Equal(time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first day %s", first.Date)
	}
	if first.Emotion.Name != "Happy" || first.Intensity != 5 {
		t.Fatalf("unexpected first day trend %+v", first)
	}

	if len(overview.Monthly) != 2 {
		t.Fatalf("expected 2 months, got %d", len(overview.Monthly))
	}
	jan := overview.Monthly[0]
	if jan.Month != "January 2026" || jan.DominantEmotion.Name != "Happy" {
		t.Fatalf("unexpected january stats %+v", jan)
	}
	if jan.EmotionCounts["Happy"] != 3 || jan.EmotionCounts["Anxious"] != 1 {
		t.Fatalf("unexpected january counts %v", jan.EmotionCounts)
	}
	if overview.Monthly[1].DominantEmotion.Name != "Sad" {
		t.Fatalf("expected Sad to dominate february, got %+v", overview.Monthly[1])
	}

	// +6 +4 +3 -7 -9
	if overview.OverallMood != domain.MoodNegative {
		t.Fatalf("expected negative overall mood, got %s", overview.OverallMood)
	}
}

func TestDominantEmotionTieBreak(t *testing.T) {
	at := time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)
	e, _ := dominantEmotion([]domain.JournalEntry{
		entryAt("Angry", 3, at),
		entryAt("Worried", 8, at),
	})
	if e.Name != "Worried" {
		t.Fatalf("expected higher intensity to win the tie, got %s", e.Name)
	}

	e, _ = dominantEmotion([]domain.JournalEntry{
		entryAt("Sad", 5, at),
		entryAt("Angry", 5, at),
	})
	if e.Name != "Angry" {
		t.Fatalf("expected name order to break a full tie, got %s", e.Name)
	}
}
