package risk

import "fmt"

// heuristicScore computes the deterministic risk score and the reasons
// behind it. Always available; used directly when the oracle is disabled
// and as the fallback when it fails.
func heuristicScore(sig Signals) (int, []string) {
	score := 0
	var reasons []string

	// Time factor
	switch d := sig.DaysRemaining; {
	case d < 0:
		score += 40
		reasons = append(reasons, "the deadline has already passed")
	case d < 1:
		score += 35
		reasons = append(reasons, "less than a day remains until the deadline")
	case d < 2:
		score += 25
		reasons = append(reasons, "less than two days remain until the deadline")
	case d < 3:
		score += 15
		reasons = append(reasons, "the deadline is under three days away")
	case d < 7:
		score += 10
		reasons = append(reasons, "the deadline is under a week away")
	}

	// Submission factor
	if !sig.HasSubmission {
		score += 30
		reasons = append(reasons, "no submission has been made for this round")
	} else if sig.DaysRemaining < 1 {
		score += 10
		reasons = append(reasons, "the submission may still need final updates")
	}

	// Activity factor
	switch {
	case sig.RecentMessages == 0:
		score += 20
		reasons = append(reasons, "no team chat activity in the last 7 days")
	case sig.RecentMessages <= 2:
		score += 10
		reasons = append(reasons, "very little team chat activity in the last 7 days")
	}

	// History factor
	if sig.OnTimeRate >= 0 {
		switch {
		case sig.OnTimeRate < 0.5:
			score += 10
			reasons = append(reasons, fmt.Sprintf("only %.0f%% of prior submissions were on time", sig.OnTimeRate*100))
		case sig.OnTimeRate <= 0.75:
			score += 5
			reasons = append(reasons, "the team's on-time record is mixed")
		}
	}

	return clampScore(score), reasons
}

// recommendationsFor generates the minimal recommendation set for the
// heuristic path. The oracle supplies richer ones when available.
func recommendationsFor(sig Signals, level Level) []string {
	var recs []string
	if !sig.HasSubmission {
		recs = append(recs, "Submit a draft entry now, even if it is not final — you can update it later")
	}
	if sig.DaysRemaining >= 0 && sig.DaysRemaining < 1 {
		recs = append(recs, "Focus on finishing and submitting; polish can wait")
	}
	if sig.RecentMessages == 0 {
		recs = append(recs, "Check in with your teammates and agree on who finishes what")
	}
	if len(recs) == 0 {
		if level == LevelLow {
			recs = append(recs, "Keep up the pace and submit before the deadline")
		} else {
			recs = append(recs, "Review what is left and plan the remaining time")
		}
	}
	return recs
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
