package web

import (
	"net/http"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

type commentResp struct {
	Comment *models.Comment `json:"comment"`
}

type commentsResp struct {
	Comments []models.Comment `json:"comments"`
}

// handleCommentCreate добавляет комментарий к задаче.
func (s *Server) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	var p models.PostCommentJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	comment, err := s.issues.AddComment(r.Context(), issueID, p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, commentResp{Comment: comment})
}

func (s *Server) handleCommentList(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	comments, err := s.issues.ListComments(r.Context(), issueID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, commentsResp{Comments: comments})
}

func (s *Server) handleCommentUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	var p models.PutCommentJSONBody
	if !s.decodePayload(w, r, &p) {
		return
	}
	comment, err := s.issues.EditComment(r.Context(), id, p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commentResp{Comment: comment})
}

func (s *Server) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, err.Error())
		return
	}
	if err := s.issues.DeleteComment(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
