package domain

import (
	"errors"
	"fmt"
)

// Сентинельные ошибки домена, используемые сервисами, репозиториями и веб-слоем.
var (
	ErrNotFound      = errors.New("NOT_FOUND")
	ErrInvalidInput  = errors.New("INVALID_INPUT")
	ErrConflict      = errors.New("CONFLICT")
	ErrDetailTimeout = errors.New("DETAIL_TIMEOUT")
)

// NewNotFoundError возвращает ошибку отсутствия переданного ресурса.
func NewNotFoundError(resource string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, resource)
}

// NewInvalidInputError сообщает о некорректных данных запроса.
func NewInvalidInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// NewConflictError сигнализирует о нарушении ссылочной целостности или уникальности.
func NewConflictError(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

// NewDetailTimeoutError возвращается, когда карточка задачи не собралась за отведённое время.
func NewDetailTimeoutError(issueID int64) error {
	return fmt.Errorf("%w: detail of issue %d was not assembled in time", ErrDetailTimeout, issueID)
}
