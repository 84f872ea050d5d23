package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hackhub-dev/hackhub-backend/internal/api/respond"
	"github.com/hackhub-dev/hackhub-backend/internal/risk"
	"github.com/hackhub-dev/hackhub-backend/internal/store"
)

// GetRiskAssessment evaluates one team/round pair.
// @Summary Risk assessment for a team in a round
// @Tags risk
// @Produce json
// @Param roundID path string true "Round ID"
// @Param teamID path string true "Team ID"
// @Success 200 {object} risk.Assessment
// @Failure 404 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Router /rounds/{roundID}/teams/{teamID}/risk [get]
func (h *Handler) GetRiskAssessment(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "roundID")
	teamID := chi.URLParam(r, "teamID")

	assessment, err := h.engine.Assess(r.Context(), teamID, roundID)
	if err != nil {
		writeAssessError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, assessment)
}

// GetAtRiskTeams returns the ranked at-risk list for a round.
// @Summary At-risk teams for a round
// @Tags risk
// @Produce json
// @Param roundID path string true "Round ID"
// @Param threshold query int false "Risk threshold (default 50)"
// @Success 200 {array} risk.TeamAssessment
// @Router /rounds/{roundID}/at-risk [get]
func (h *Handler) GetAtRiskTeams(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "roundID")

	threshold := risk.DefaultThreshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			respond.WriteError(w, http.StatusBadRequest, "BAD_THRESHOLD", "threshold must be an integer in [0,100]")
			return
		}
		threshold = n
	}

	atRisk := h.engine.AtRiskTeams(r.Context(), roundID, threshold)
	if atRisk == nil {
		atRisk = []risk.TeamAssessment{}
	}
	respond.WriteJSON(w, http.StatusOK, atRisk)
}

// SendReminderNow is the manual trigger for one team/round pair.
// @Summary Send a deadline reminder to one team now
// @Tags reminders
// @Produce json
// @Param roundID path string true "Round ID"
// @Param teamID path string true "Team ID"
// @Success 201 {object} store.Message
// @Failure 404 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Router /rounds/{roundID}/teams/{teamID}/remind [post]
func (h *Handler) SendReminderNow(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "roundID")
	teamID := chi.URLParam(r, "teamID")

	msg, err := h.sweeper.SendReminderNow(r.Context(), teamID, roundID)
	if err != nil {
		writeAssessError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, msg)
}

// RunSweep triggers a full sweep synchronously. Admin only.
// @Summary Run the lifecycle + reminder sweep now
// @Tags sweep
// @Produce json
// @Success 200 {object} sweep.Result
// @Router /sweep/run [post]
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	result := h.sweeper.Run(r.Context())
	respond.WriteJSON(w, http.StatusOK, result)
}

// ProcessRound runs a single-round sweep pass. Admin only.
// @Summary Process one round now
// @Tags sweep
// @Produce json
// @Param roundID path string true "Round ID"
// @Success 200 {object} sweep.Result
// @Failure 404 {object} respond.ErrorResponse
// @Router /sweep/rounds/{roundID} [post]
func (h *Handler) ProcessRound(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "roundID")

	result, err := h.sweeper.ProcessRound(r.Context(), roundID)
	if err != nil {
		writeAssessError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, result)
}

// writeAssessError maps subsystem errors onto HTTP statuses.
func writeAssessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, risk.ErrNoDeadline):
		respond.WriteError(w, http.StatusUnprocessableEntity, "NO_DEADLINE", err.Error())
	default:
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "INTERNAL", "operation failed", err.Error())
	}
}
