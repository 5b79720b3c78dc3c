// Package crop holds the crop catalog and the heuristics used to judge how
// well a plant's growing conditions suit its crop.
package crop

import (
	"strings"
	"time"
)

// Conditions describes where and how a crop is grown
type Conditions struct {
	CropType              string
	SoilType              string
	AvgTemperatureCelsius *float64
	IsIndoor              bool
	WateringFrequencyDays *int
	SunlightExposure      string
}

// Suitability is a 0..100 score with the issues that lowered it
type Suitability struct {
	Score   int    `json:"score"`
	Message string `json:"message"`
}

const excellent = "Conditions look excellent."

var (
	rootCrops = []string{"carrot", "potato", "radish"}
	sunLovers = []string{"Tomato", "Pepper", "Corn"}
)

// CalculateGrowthSuitability scores growing conditions with simple agronomic rules
func CalculateGrowthSuitability(c Conditions) Suitability {
	score := 100
	var issues []string

	// Most crops like 15-30 C
	if t := c.AvgTemperatureCelsius; t != nil {
		switch {
		case *t < 0:
			score -= 40
			issues = append(issues, "Too cold/freezing!")
		case *t < 10:
			score -= 20
			issues = append(issues, "Temperature is low for growth.")
		case *t > 35:
			score -= 20
			issues = append(issues, "Temperature is too high.")
		}
	}

	// Root crops need loose soil
	if c.SoilType != "" && c.CropType != "" {
		crop := strings.ToLower(c.CropType)
		soil := strings.ToLower(c.SoilType)
		if containsAny(crop, rootCrops) && strings.Contains(soil, "clay") {
			score -= 30
			issues = append(issues, "Clay soil restricts root growth for this crop.")
		}
	}

	if c.SunlightExposure != "" && strings.Contains(c.SunlightExposure, "Shade") && containsAny(c.CropType, sunLovers) {
		score -= 30
		issues = append(issues, "This crop needs more sun.")
	}

	if w := c.WateringFrequencyDays; w != nil {
		if *w > 14 {
			score -= 10
			issues = append(issues, "Watering frequency seems too low.")
		}
		if *w == 0 {
			score -= 10
			issues = append(issues, "Need to water at least once.")
		}
	}

	if score < 0 {
		score = 0
	}

	msg := excellent
	if len(issues) > 0 {
		msg = strings.Join(issues, " ")
	}
	return Suitability{Score: score, Message: msg}
}

// CalculateTimeProgress returns how far (0..100) now lies between planting and harvest
func CalculateTimeProgress(planted time.Time, harvest *time.Time, now time.Time) int {
	if harvest == nil {
		return 0
	}
	if planted.After(now) {
		return 0
	}

	total := harvest.Sub(planted).Hours() / 24
	if total <= 0 {
		return 100
	}
	elapsed := now.Sub(planted).Hours() / 24

	percent := elapsed / total * 100
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	}
	return int(percent)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
