package domain

import "strings"

// Emotion is the feeling the user picked on the first step.
type Emotion struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// OtherEmotionName marks the catalog entry that asks for a typed emotion.
const OtherEmotionName = "Other"

const (
	customEmotionIcon  = "📝"
	customEmotionColor = "#A9A9A9"
)

var baseEmotions = []Emotion{
	{Name: "Happy", Icon: "😊", Color: "#FFD700"},
	{Name: "Sad", Icon: "😢", Color: "#87CEEB"},
	{Name: "Angry", Icon: "😠", Color: "#FF6B6B"},
	{Name: "Worried", Icon: "😨", Color: "#DDA0DD"},
	{Name: OtherEmotionName, Icon: "➕", Color: "#A9A9A9"},
}

var detailedEmotions = []Emotion{
	{Name: "Overwhelmed", Icon: "😫", Color: "#E6B0AA"},
	{Name: "Stressed", Icon: "😓", Color: "#D7BDE2"},
	{Name: "Anxious", Icon: "😰", Color: "#A9CCE3"},
	{Name: "Frustrated", Icon: "😤", Color: "#F5B7B1"},
	{Name: "Nervous", Icon: "😅", Color: "#FAD7A0"},
}

// BaseEmotions returns a copy of the primary emotion catalog.
func BaseEmotions() []Emotion {
	return append([]Emotion(nil), baseEmotions...)
}

// DetailedEmotions returns a copy of the expanded emotion catalog.
func DetailedEmotions() []Emotion {
	return append([]Emotion(nil), detailedEmotions...)
}

// LookupEmotion finds a catalog emotion by name, case-insensitively.
func LookupEmotion(name string) (Emotion, bool) {
	key := normalizeName(name)
	if key == "" {
		return Emotion{}, false
	}
	for _, e := range baseEmotions {
		if normalizeName(e.Name) == key {
			return e, true
		}
	}
	for _, e := range detailedEmotions {
		if normalizeName(e.Name) == key {
			return e, true
		}
	}
	return Emotion{}, false
}

// CustomEmotion builds the emotion used when the user types their own name.
func CustomEmotion(name string) Emotion {
	return Emotion{
		Name:  strings.TrimSpace(name),
		Icon:  customEmotionIcon,
		Color: customEmotionColor,
	}
}

// ResolveEmotion returns the catalog emotion for name, or a custom emotion
// when the name is not part of the catalog.
func ResolveEmotion(name string) Emotion {
	if e, ok := LookupEmotion(name); ok {
		return e
	}
	return CustomEmotion(name)
}

func (e Emotion) IsOther() bool {
	return e.Name == OtherEmotionName
}

func (e Emotion) IsZero() bool {
	return strings.TrimSpace(e.Name) == ""
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
