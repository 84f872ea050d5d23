// Package risk estimates a team's likelihood of missing a round deadline.
//
// Pipeline: gather signals → heuristic score (always computed) → optional
// oracle refinement with heuristic fallback → level bucketing. Assessments
// are ephemeral: they are recomputed on every evaluation and never stored,
// so at-risk status always reflects current signals.
package risk

import (
	"time"

	"github.com/hackhub-dev/hackhub-backend/internal/store"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// DefaultThreshold is the at-risk cutoff used when the caller does not
	// supply one.
	DefaultThreshold = 50

	// recentActivityWindow is the trailing window for team chat activity.
	recentActivityWindow = 7 * 24 * time.Hour
)

// Level buckets from score.
const (
	levelCriticalMin = 75
	levelHighMin     = 50
	levelMediumMin   = 25
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Level is the categorical bucket of a risk score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// LevelFor maps a score in [0,100] to its bucket.
func LevelFor(score int) Level {
	switch {
	case score >= levelCriticalMin:
		return LevelCritical
	case score >= levelHighMin:
		return LevelHigh
	case score >= levelMediumMin:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Assessment is the result of evaluating one team/round pair. Never persisted.
type Assessment struct {
	RiskScore            int      `json:"riskScore"`
	RiskLevel            Level    `json:"riskLevel"`
	Reasons              []string `json:"reasons"`
	Recommendations      []string `json:"recommendations"`
	PredictedProbability int      `json:"predictedProbability"`
}

// Signals is everything the scorer looks at for one team/round pair.
type Signals struct {
	TeamName       string
	RoundName      string
	Deadline       time.Time
	HoursRemaining float64 // may be negative
	DaysRemaining  float64
	HasSubmission  bool // submission with non-empty link or file
	RecentMessages int  // team chat messages in the trailing 7 days
	// OnTimeRate is the fraction of the team's prior submissions that landed
	// before their round's deadline, in [0,1]; negative means no history.
	OnTimeRate float64
}

// TeamAssessment pairs a team with its assessment for ranking.
type TeamAssessment struct {
	Team       store.Team `json:"team"`
	Assessment Assessment `json:"assessment"`
}
