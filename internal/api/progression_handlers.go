package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fanpulse/fanpulse/internal/domain"
)

// ─── Catalogs ───────────────────────────────────────────────────────────────

func (s *Server) handleTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tiers": s.engine.Resolver().Table().Tiers(),
		"floor": s.engine.Resolver().Floor(),
	})
}

func (s *Server) handleMissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"missions": s.engine.Missions(),
	})
}

func (s *Server) handleWheel(w http.ResponseWriter, r *http.Request) {
	wheel := s.engine.Wheel()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"segments":      wheel.Segments(),
		"segment_width": wheel.SegmentWidth(),
	})
}

func (s *Server) handleProfileItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": s.engine.ProfileItems(),
	})
}

// ─── Users ──────────────────────────────────────────────────────────────────

type onboardRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.Onboard(r.Context(), req.UserID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	vm, err := s.engine.ViewModel(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vm)
}

type pointsRequest struct {
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.ApplyPointsDelta(r.Context(), chi.URLParam(r, "userID"), req.Delta, req.Reason)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMission(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.CompleteMission(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "missionID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSocial(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.RecordSocialConnect(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "platform"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type profileItemRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleProfileItem(w http.ResponseWriter, r *http.Request) {
	var req profileItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.CompleteProfileItem(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "itemID"), req.Value)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var id domain.Identity
	if err := decodeBody(r, &id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.Authenticate(r.Context(), chi.URLParam(r, "userID"), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type teamRequest struct {
	Team string `json:"team"`
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.SelectTeam(r.Context(), chi.URLParam(r, "userID"), req.Team)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type signInRequest struct {
	Method string `json:"method"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.SelectSignInMethod(r.Context(), chi.URLParam(r, "userID"), req.Method)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type fuelRequest struct {
	Fuel int64 `json:"fuel"`
}

func (s *Server) handleFuel(w http.ResponseWriter, r *http.Request) {
	var req fuelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.AddFuel(r.Context(), chi.URLParam(r, "userID"), req.Fuel)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- spin / settle ---

func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Spin(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.SettleWeek(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleShield(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.GrantShield(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.ResetPoints(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── History & Events ───────────────────────────────────────────────────────

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if _, err := s.engine.ViewModel(r.Context(), userID); err != nil {
		writeEngineError(w, r, err)
		return
	}
	entries, err := s.engine.History(r.Context(), userID, queryLimit(r, 50))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.PointsEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func (s *Server) handlePendingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.Pending(r.Context(), chi.URLParam(r, "userID"), queryLimit(r, 50))
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

func (s *Server) handleEventShown(w http.ResponseWriter, r *http.Request) {
	if err := s.events.MarkShown(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "eventID")); err != nil {
		writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
