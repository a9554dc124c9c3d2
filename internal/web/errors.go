package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

// writeError формирует стандартный JSON с кодом и сообщением об ошибке.
func writeError(w http.ResponseWriter, status int, code ErrorResponseErrorCode, message string) {
	var resp models.ErrorResponse
	resp.Error.Code = models.ErrorResponseErrorCode(code)
	resp.Error.Message = message
	writeJSON(w, status, resp)
}

// writeDomainError отвечает статусом, соответствующим доменной ошибке.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code, msg := mapDomainError(err)
	writeError(w, status, code, msg)
}

// Возможные значения кода ошибки.
const (
	NOTFOUND       ErrorResponseErrorCode = "NOT_FOUND"
	INVALIDINPUT   ErrorResponseErrorCode = "INVALID_INPUT"
	INVALIDPAYLOAD ErrorResponseErrorCode = "INVALID_PAYLOAD"
	CONFLICT       ErrorResponseErrorCode = "CONFLICT"
	DETAILTIMEOUT  ErrorResponseErrorCode = "DETAIL_TIMEOUT"
	INTERNALERROR  ErrorResponseErrorCode = "INTERNAL_ERROR"
)

// ErrorResponseErrorCode описывает код ошибки в ответе.
type ErrorResponseErrorCode = models.ErrorResponseErrorCode

// pathID разбирает числовой идентификатор из маршрута.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// decodePayload читает JSON тела запроса и проверяет его теги validate.
// При ошибке ответ уже записан.
func (s *Server) decodePayload(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, INVALIDPAYLOAD, "invalid json payload")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, INVALIDINPUT, describeValidation(err))
		return false
	}
	return true
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
