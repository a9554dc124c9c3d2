package web

import (
	"net/http"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

type issueResp struct {
	Issue *models.Issue `json:"issue"`
}

type issuesResp struct {
	Issues []models.Issue `json:"issues"`
}

type idsResp struct {
	IDs []int64 `json:"ids"`
}

type usersResp struct {
	Users []models.User `json:"users"`
}

// handleIssueCreate создаёт задачу.
func (s *Server) handleIssueCreate(w http.ResponseWriter, r *http.Request) {
	var p models.PostIssueJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}

	issue, err := s.issues.CreateIssue(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issueResp{Issue: issue})
}

// handleIssueList возвращает задачи, отфильтрованные по ?state=.
func (s *Server) handleIssueList(w http.ResponseWriter, r *http.Request) {
	state := models.IssueState(r.URL.Query().Get("state"))
	issues, err := s.issues.ListIssues(r.Context(), state)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	writeJSON(w, http.StatusOK, issuesResp{Issues: issues})
}

func (s *Server) handleIssueGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	issue, err := s.issues.GetIssue(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issueResp{Issue: issue})
}

func (s *Server) handleIssueUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	var p models.PutIssueJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	issue, err := s.issues.UpdateIssue(r.Context(), id, p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issueResp{Issue: issue})
}

// handleIssueState открывает или закрывает задачу.
func (s *Server) handleIssueState(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	var p models.PatchIssueStateJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	issue, err := s.issues.SetState(r.Context(), id, p.IsOpen)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issueResp{Issue: issue})
}

func (s *Server) handleIssueDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	if err := s.issues.DeleteIssue(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAssigneesReplace заменяет исполнителей задачи целиком.
func (s *Server) handleAssigneesReplace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	var p models.PutIDsJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	ids, err := s.issues.SetAssignees(r.Context(), id, p.IDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idsResp{IDs: nonNilIDs(ids)})
}

func (s *Server) handleAssigneesList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	users, err := s.issues.ListAssignees(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, usersResp{Users: users})
}

// handleIssueLabelsReplace заменяет метки задачи целиком.
func (s *Server) handleIssueLabelsReplace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	var p models.PutIDsJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	ids, err := s.issues.SetLabels(r.Context(), id, p.IDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idsResp{IDs: nonNilIDs(ids)})
}

// handleIssueDetail отдаёт карточку задачи. Сбои отдельных загрузок попадают в warnings.
func (s *Server) handleIssueDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	resp, err := s.details.GetDetail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
