package api

import (
	"errors"
	"net/http"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/recommend"
)

type recommendationsResponse struct {
	UserID          string                 `json:"userId"`
	Count           int                    `json:"count"`
	Recommendations []model.Recommendation `json:"recommendations"`
}

// handleRecommendations handles GET /api/v1/users/{userID}/recommendations.
// limit defaults server-side; diversify defaults to true.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recommendations"
	userID := pathParam(r, "userID")
	if userID == "" {
		s.fail(w, r, NewKind(op, ErrBadRequest))
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err == nil && limit < 0 {
		err = errors.New("limit must not be negative")
	}
	if err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	diversify, err := queryBool(r, "diversify", true)
	if err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}

	recs, err := s.deps.Recommender.Recommend(r.Context(), recommend.Request{
		UserID:    userID,
		Limit:     limit,
		Diversify: diversify,
	})
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{UserID: userID, Count: len(recs), Recommendations: recs})
}

// handleMatch handles GET /api/v1/projects/{projectID}/match?userId=.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_match"
	projectID := pathParam(r, "projectID")
	userID := r.URL.Query().Get("userId")
	if projectID == "" || userID == "" {
		s.fail(w, r, NewKind(op, ErrBadRequest))
		return
	}
	res, err := s.deps.Recommender.Match(r.Context(), userID, projectID)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleInvalidate handles POST /api/v1/cache/invalidate.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.invalidate_cache"
	if err := s.deps.Recommender.InvalidatePool(r.Context()); err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}
