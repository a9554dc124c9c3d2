package web

import (
	"net/http"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

type userResp struct {
	User *models.User `json:"user"`
}

type labelResp struct {
	Label *models.Label `json:"label"`
}

type labelsResp struct {
	Labels []models.Label `json:"labels"`
}

type milestoneResp struct {
	Milestone *models.Milestone `json:"milestone"`
}

type milestonesResp struct {
	Milestones []models.Milestone `json:"milestones"`
}

// handleUserCreate регистрирует пользователя.
func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	var p models.PostUserJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	user, err := s.catalog.CreateUser(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResp{User: user})
}

func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	user, err := s.catalog.GetUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResp{User: user})
}

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	users, err := s.catalog.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, usersResp{Users: users})
}

func (s *Server) handleLabelCreate(w http.ResponseWriter, r *http.Request) {
	var p models.PostLabelJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	label, err := s.catalog.CreateLabel(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, labelResp{Label: label})
}

func (s *Server) handleLabelUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	var p models.PostLabelJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	label, err := s.catalog.UpdateLabel(r.Context(), id, p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, labelResp{Label: label})
}

func (s *Server) handleLabelDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	if err := s.catalog.DeleteLabel(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLabelList(w http.ResponseWriter, r *http.Request) {
	labels, err := s.catalog.ListLabels(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if labels == nil {
		labels = []models.Label{}
	}
	writeJSON(w, http.StatusOK, labelsResp{Labels: labels})
}

func (s *Server) handleMilestoneCreate(w http.ResponseWriter, r *http.Request) {
	var p models.PostMilestoneJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	m, err := s.catalog.CreateMilestone(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, milestoneResp{Milestone: m})
}

func (s *Server) handleMilestoneUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	var p models.PostMilestoneJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	m, err := s.catalog.UpdateMilestone(r.Context(), id, p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, milestoneResp{Milestone: m})
}

func (s *Server) handleMilestoneDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	if err := s.catalog.DeleteMilestone(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMilestoneList(w http.ResponseWriter, r *http.Request) {
	ms, err := s.catalog.ListMilestones(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if ms == nil {
		ms = []models.Milestone{}
	}
	writeJSON(w, http.StatusOK, milestonesResp{Milestones: ms})
}
