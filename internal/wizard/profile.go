package wizard

import (
	"sort"
	"time"

	"github.com/kapu/wellness-companion-go/internal/domain"
)

type emotionTally struct {
	emotion domain.Emotion
	count   int
	total   int
}

// BuildProfileOverview summarises session entries into the daily trend,
// per-month counts and the overall mood.
func BuildProfileOverview(entries []domain.JournalEntry) domain.ProfileOverview {
	overview := domain.ProfileOverview{
		Daily:       []domain.EmotionTrend{},
		Monthly:     []domain.MonthlyStats{},
		OverallMood: domain.MoodNeutral,
		EntryCount:  len(entries),
	}
	if len(entries) == 0 {
		return overview
	}

	sorted := append([]domain.JournalEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var (
		dayKeys   []time.Time
		days      = map[time.Time][]domain.JournalEntry{}
		monthKeys []time.Time
		months    = map[time.Time][]domain.JournalEntry{}
		balance   int
	)
	for _, e := range sorted {
		t := e.Timestamp
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		if _, ok := days[day]; !ok {
			dayKeys = append(dayKeys, day)
		}
		days[day] = append(days[day], e)

		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		if _, ok := months[month]; !ok {
			monthKeys = append(monthKeys, month)
		}
		months[month] = append(months[month], e)

		switch e.Emotion.Polarity() {
		case domain.MoodPositive:
			balance += int(e.Intensity)
		case domain.MoodNegative:
			balance -= int(e.Intensity)
		}
	}

	for _, day := range dayKeys {
		dominant, tally := dominantEmotion(days[day])
		overview.Daily = append(overview.Daily, domain.EmotionTrend{
			Date:      day,
			Emotion:   dominant,
			Intensity: domain.Intensity((tally.total + tally.count/2) / tally.count),
		})
	}

	for _, month := range monthKeys {
		group := months[month]
		counts := make(map[string]int)
		for _, e := range group {
			counts[e.Emotion.Name]++
		}
		dominant, _ := dominantEmotion(group)
		overview.Monthly = append(overview.Monthly, domain.MonthlyStats{
			Month:           month.Format("January 2006"),
			DominantEmotion: dominant,
			EmotionCounts:   counts,
		})
	}

	switch {
	case balance > 0:
		overview.OverallMood = domain.MoodPositive
	case balance < 0:
		overview.OverallMood = domain.MoodNegative
	}

	return overview
}

// dominantEmotion picks the most frequent emotion. Ties go to the higher
// total intensity, then to the name.
func dominantEmotion(entries []domain.JournalEntry) (domain.Emotion, emotionTally) {
	tallies := map[string]*emotionTally{}
	for _, e := range entries {
		t, ok := tallies[e.Emotion.Name]
		if !ok {
			t = &emotionTally{emotion: e.Emotion}
			tallies[e.Emotion.Name] = t
		}
		t.count++
		t.total += int(e.Intensity)
	}

	var best *emotionTally
	for _, t := range tallies {
		switch {
		case best == nil,
			t.count > best.count,
			t.count == best.count && t.total > best.total,
			t.count == best.count && t.total == best.total && t.emotion.Name < best.emotion.Name:
			best = t
		}
	}
	return best.emotion, *best
}
