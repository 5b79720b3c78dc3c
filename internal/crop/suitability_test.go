package crop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func TestCalculateGrowthSuitability(t *testing.T) {
	tests := []struct {
		name    string
		in      Conditions
		score   int
		message string
	}{
		{
			name:    "ideal conditions",
			in:      Conditions{CropType: "Wheat", SoilType: "Loam", AvgTemperatureCelsius: fptr(20), WateringFrequencyDays: iptr(3), SunlightExposure: "Full Sun"},
			score:   100,
			message: "Conditions look excellent.",
		},
		{
			name:    "nothing known",
			in:      Conditions{},
			score:   100,
			message: "Conditions look excellent.",
		},
		{
			name:    "freezing",
			in:      Conditions{CropType: "Wheat", AvgTemperatureCelsius: fptr(-2)},
			score:   60,
			message: "Too cold/freezing!",
		},
		{
			name:    "cool",
			in:      Conditions{AvgTemperatureCelsius: fptr(5)},
			score:   80,
			message: "Temperature is low for growth.",
		},
		{
			name:    "hot",
			in:      Conditions{AvgTemperatureCelsius: fptr(36)},
			score:   80,
			message: "Temperature is too high.",
		},
		{
			name:    "boundaries are fine",
			in:      Conditions{AvgTemperatureCelsius: fptr(10)},
			score:   100,
			message: "Conditions look excellent.",
		},
		{
			name:    "carrot in clay",
			in:      Conditions{CropType: "Carrot", SoilType: "Heavy Clay"},
			score:   70,
			message: "Clay soil restricts root growth for this crop.",
		},
		{
			name:    "tomato in shade",
			in:      Conditions{CropType: "Tomato", SunlightExposure: "Partial Shade"},
			score:   70,
			message: "This crop needs more sun.",
		},
		{
			name:    "rarely watered",
			in:      Conditions{WateringFrequencyDays: iptr(21)},
			score:   90,
			message: "Watering frequency seems too low.",
		},
		{
			name:    "never watered",
			in:      Conditions{WateringFrequencyDays: iptr(0)},
			score:   90,
			message: "Need to water at least once.",
		},
		{
			name: "everything wrong",
			in: Conditions{
				CropType: "Potato", SoilType: "clay", AvgTemperatureCelsius: fptr(-5),
				WateringFrequencyDays: iptr(30), SunlightExposure: "Shade",
			},
			score:   20,
			message: "Too cold/freezing! Clay soil restricts root growth for this crop. Watering frequency seems too low.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGrowthSuitability(tt.in)
			assert.Equal(t, tt.score, got.Score)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}

func TestScoreNeverNegative(t *testing.T) {
	got := CalculateGrowthSuitability(Conditions{
		CropType: "Sweet Corn radish", SoilType: "clay", AvgTemperatureCelsius: fptr(-10),
		WateringFrequencyDays: iptr(20), SunlightExposure: "Shade",
	})
	// -40 -30 -30 -10
	assert.Equal(t, 0, got.Score)
}

func TestCalculateTimeProgress(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	harvest := func(d time.Time) *time.Time { return &d }

	assert.Equal(t, 0, CalculateTimeProgress(now.Add(-10*day), nil, now))
	assert.Equal(t, 0, CalculateTimeProgress(now.Add(5*day), harvest(now.Add(50*day)), now))
	assert.Equal(t, 100, CalculateTimeProgress(now.Add(-5*day), harvest(now.Add(-5*day)), now))
	assert.Equal(t, 100, CalculateTimeProgress(now.Add(-5*day), harvest(now.Add(-9*day)), now))
	assert.Equal(t, 50, CalculateTimeProgress(now.Add(-10*day), harvest(now.Add(10*day)), now))
	assert.Equal(t, 25, CalculateTimeProgress(now.Add(-25*day), harvest(now.Add(75*day)), now))
	assert.Equal(t, 100, CalculateTimeProgress(now.Add(-40*day), harvest(now.Add(-10*day)), now))
	assert.Equal(t, 0, CalculateTimeProgress(now, harvest(now.Add(10*day)), now))
}
