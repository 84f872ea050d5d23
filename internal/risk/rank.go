package risk

import (
	"context"
	"sort"
)

// AtRiskTeams enumerates every team in the round's hackathon, assesses each,
// filters by threshold, and ranks descending by score (ties keep enumeration
// order). An explicit threshold of 0 selects every team; a negative value
// means unset and falls back to DefaultThreshold. Resolution failures yield
// an empty list rather than an error; per-team failures are logged and that
// team is skipped.
func (e *Engine) AtRiskTeams(ctx context.Context, roundID string, threshold int) []TeamAssessment {
	if threshold < 0 {
		threshold = DefaultThreshold
	}

	round, err := e.store.RoundByID(ctx, roundID)
	if err != nil {
		e.logger.Warn("at-risk selection: round not resolved", "round_id", roundID, "error", err)
		return nil
	}
	if round.EndDate == nil {
		e.logger.Warn("at-risk selection: round has no deadline", "round_id", roundID)
		return nil
	}

	hackathon, err := e.store.HackathonContainingRound(ctx, roundID)
	if err != nil {
		e.logger.Warn("at-risk selection: hackathon not resolved", "round_id", roundID, "error", err)
		return nil
	}

	teams, err := e.store.TeamsForHackathon(ctx, hackathon.ID)
	if err != nil {
		e.logger.Warn("at-risk selection: teams not resolved", "hackathon_id", hackathon.ID, "error", err)
		return nil
	}

	var atRisk []TeamAssessment
	for _, team := range teams {
		a, err := e.assess(ctx, &team, round)
		if err != nil {
			e.logger.Warn("at-risk selection: team skipped",
				"team_id", team.ID, "round_id", roundID, "error", err)
			continue
		}
		if a.RiskScore >= threshold {
			atRisk = append(atRisk, TeamAssessment{Team: team, Assessment: *a})
		}
	}

	sort.SliceStable(atRisk, func(i, j int) bool {
		return atRisk[i].Assessment.RiskScore > atRisk[j].Assessment.RiskScore
	})
	return atRisk
}
