package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicScore(t *testing.T) {
	tests := []struct {
		name string
		sig  Signals
		want int
	}{
		{
			name: "imminent deadline no submission no chatter",
			sig:  Signals{DaysRemaining: 0.5, HoursRemaining: 12, RecentMessages: 0, OnTimeRate: -1},
			want: 85, // 35 time + 30 submission + 20 activity
		},
		{
			name: "deadline passed",
			sig:  Signals{DaysRemaining: -0.1, HoursRemaining: -2, RecentMessages: 5, OnTimeRate: -1},
			want: 70, // 40 + 30
		},
		{
			name: "submitted and chatty well ahead of deadline",
			sig:  Signals{DaysRemaining: 10, HasSubmission: true, RecentMessages: 12, OnTimeRate: 1},
			want: 0,
		},
		{
			name: "submitted but last-day polish risk",
			sig:  Signals{DaysRemaining: 0.3, HasSubmission: true, RecentMessages: 4, OnTimeRate: -1},
			want: 45, // 35 + 10
		},
		{
			name: "sparse chatter under two days",
			sig:  Signals{DaysRemaining: 1.5, HasSubmission: true, RecentMessages: 2, OnTimeRate: -1},
			want: 35, // 25 + 10
		},
		{
			name: "poor on-time history",
			sig:  Signals{DaysRemaining: 5, HasSubmission: true, RecentMessages: 8, OnTimeRate: 0.25},
			want: 20, // 10 time + 10 history
		},
		{
			name: "mixed on-time history",
			sig:  Signals{DaysRemaining: 5, HasSubmission: true, RecentMessages: 8, OnTimeRate: 0.75},
			want: 15, // 10 time + 5 history
		},
		{
			name: "no history adds nothing",
			sig:  Signals{DaysRemaining: 5, HasSubmission: true, RecentMessages: 8, OnTimeRate: -1},
			want: 10,
		},
		{
			name: "worst case totals 100",
			sig:  Signals{DaysRemaining: -1, HoursRemaining: -24, RecentMessages: 0, OnTimeRate: 0.1},
			want: 100, // 40+30+20+10
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reasons := heuristicScore(tt.sig)
			assert.Equal(t, tt.want, got)
			if got > 0 {
				assert.NotEmpty(t, reasons)
			}
		})
	}
}

func TestHeuristicScoreMonotonicInTime(t *testing.T) {
	// Shrinking the remaining time never lowers the score.
	base := Signals{HasSubmission: false, RecentMessages: 5, OnTimeRate: -1}
	prev := -1
	for _, days := range []float64{10, 6, 2.5, 1.5, 0.5, -0.5} {
		sig := base
		sig.DaysRemaining = days
		sig.HoursRemaining = days * 24
		got, _ := heuristicScore(sig)
		assert.GreaterOrEqual(t, got, prev, "days=%v", days)
		prev = got
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelLow, LevelFor(0))
	assert.Equal(t, LevelLow, LevelFor(24))
	assert.Equal(t, LevelMedium, LevelFor(25))
	assert.Equal(t, LevelMedium, LevelFor(49))
	assert.Equal(t, LevelHigh, LevelFor(50))
	assert.Equal(t, LevelHigh, LevelFor(74))
	assert.Equal(t, LevelCritical, LevelFor(75))
	assert.Equal(t, LevelCritical, LevelFor(100))
}

func TestRecommendationsForNeverEmpty(t *testing.T) {
	recs := recommendationsFor(Signals{HasSubmission: true, RecentMessages: 10, DaysRemaining: 12}, LevelLow)
	assert.NotEmpty(t, recs)

	recs = recommendationsFor(Signals{HasSubmission: false, RecentMessages: 0, DaysRemaining: 0.5}, LevelCritical)
	assert.Len(t, recs, 3)
}
