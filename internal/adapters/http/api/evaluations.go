package api

import (
	"net/http"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/challenge"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

type evaluateRequest struct {
	Code     string `json:"code" validate:"required,max=200000"`
	Language string `json:"language" validate:"omitempty,max=32"`
}

type attemptRequest struct {
	UserID   string `json:"userId" validate:"required,max=128"`
	Code     string `json:"code" validate:"required,max=200000"`
	Language string `json:"language" validate:"omitempty,max=32"`
}

// handleEvaluate handles POST /api/v1/evaluations.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluation"
	var req evaluateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := s.deps.Evaluator.Evaluate(r.Context(), model.CodeSubmission{Code: req.Code, Language: req.Language})
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAttempt handles POST /api/v1/challenges/{challengeID}/attempts.
func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_attempt"
	challengeID := pathParam(r, "challengeID")
	if challengeID == "" {
		s.fail(w, r, NewKind(op, ErrBadRequest))
		return
	}
	var req attemptRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := s.deps.Attempts.Submit(r.Context(), challenge.Submission{
		ChallengeID: challengeID,
		UserID:      req.UserID,
		Code:        req.Code,
		Language:    req.Language,
	})
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
