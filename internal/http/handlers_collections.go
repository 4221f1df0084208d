package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"finestra/internal/core"
)

type settingsResponse struct {
	MonthlyBudget          core.Money `json:"monthlyBudget"`
	MonthlyBudgetFormatted string     `json:"monthlyBudgetFormatted"`
	UserName               string     `json:"userName"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.store.Settings()
	respondJSON(w, http.StatusOK, settingsResponse{
		MonthlyBudget:          settings.MonthlyBudget,
		MonthlyBudgetFormatted: core.FormatMoney(settings.MonthlyBudget),
		UserName:               settings.UserName,
	})
}

// updateSettingsRequest carries optional fields; only the ones present
// are applied. Each applied field persists on its own, matching the
// store's immediate-write rule for settings.
type updateSettingsRequest struct {
	MonthlyBudget *core.Money `json:"monthlyBudget"`
	UserName      *string     `json:"userName"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MonthlyBudget == nil && req.UserName == nil {
		respondError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if req.MonthlyBudget != nil {
		if err := s.store.SetMonthlyBudget(r.Context(), *req.MonthlyBudget); err != nil {
			respondDomainError(w, err)
			return
		}
	}
	if req.UserName != nil {
		s.store.SetUserName(r.Context(), strings.TrimSpace(*req.UserName))
	}

	s.handleGetSettings(w, r)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Subscriptions())
}

type addSubscriptionRequest struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
	Icon   string     `json:"icon"`
}

func (s *Server) handleAddSubscription(w http.ResponseWriter, r *http.Request) {
	var req addSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	icon := req.Icon
	if icon == "" {
		icon = core.DefaultIcon
	}

	sub, err := s.store.AddSubscription(r.Context(), core.Subscription{
		Name:   req.Name,
		Amount: req.Amount,
		Icon:   icon,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleRemoveSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	s.store.RemoveSubscription(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

type goalResponse struct {
	core.Goal
	Progress float64 `json:"progress"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals := s.store.Goals()
	out := make([]goalResponse, len(goals))
	for i, g := range goals {
		out[i] = goalResponse{Goal: g, Progress: g.Progress()}
	}
	respondJSON(w, http.StatusOK, out)
}

type addGoalRequest struct {
	Name     string     `json:"name"`
	Target   core.Money `json:"target"`
	Current  core.Money `json:"current"`
	Deadline core.Date  `json:"deadline"`
	Emoji    string     `json:"emoji"`
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var req addGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := s.store.AddGoal(r.Context(), core.Goal{
		Name:     req.Name,
		Target:   req.Target,
		Current:  req.Current,
		Deadline: req.Deadline,
		Emoji:    req.Emoji,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, goalResponse{Goal: goal, Progress: goal.Progress()})
}

type addToGoalRequest struct {
	Amount core.Money `json:"amount"`
}

func (s *Server) handleAddToGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}
	var req addToGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount.Paise <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	goal, found := s.store.AddToGoal(r.Context(), id, req.Amount)
	if !found {
		respondError(w, http.StatusNotFound, "goal not found")
		return
	}
	respondJSON(w, http.StatusOK, goalResponse{Goal: goal, Progress: goal.Progress()})
}

func (s *Server) handleRemoveGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid goal id")
		return
	}
	s.store.RemoveGoal(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
