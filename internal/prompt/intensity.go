package prompt

import "github.com/kapu/wellness-companion-go/internal/domain"

type intensityBand struct {
	max        domain.Intensity
	descriptor string
}

var intensityBands = []intensityBand{
	{max: 2, descriptor: "very mild"},
	{max: 4, descriptor: "mild"},
	{max: 6, descriptor: "moderate"},
	{max: 8, descriptor: "very strong"},
	{max: domain.MaxIntensity, descriptor: "overwhelming"},
}

// DescribeIntensity maps a score onto the phrase used in prompts. Scores
// outside the scale are clamped to the nearest band.
func DescribeIntensity(i domain.Intensity) string {
	for _, band := range intensityBands {
		if i <= band.max {
			return band.descriptor
		}
	}
	return intensityBands[len(intensityBands)-1].descriptor
}
