// Package apperrors содержит типизированные пользовательские ошибки доменного
// слоя. Сервисы возвращают их в точке обнаружения, хендлеры транслируют Status
// в HTTP-код, а Message уходит клиенту как есть.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// As извлекает *Error из цепочки ошибок.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func TemplateAlreadyExists(name string) *Error {
	return &Error{http.StatusConflict, fmt.Sprintf("template with name '%s' already exists", name)}
}

func TeamAlreadyExists(name, template string) *Error {
	return &Error{http.StatusConflict, fmt.Sprintf("team with name '%s' already exists for template '%s'", name, template)}
}

func InvalidDimensions(max int) *Error {
	return &Error{http.StatusBadRequest, fmt.Sprintf("template dimensions must be > 0 and <= %d", max)}
}

func InvalidName(reason string) *Error {
	msg := "invalid name"
	if reason != "" {
		msg = "invalid name (" + reason + ")"
	}
	return &Error{http.StatusBadRequest, msg}
}

func InvalidImage(reason string) *Error {
	return &Error{http.StatusBadRequest, "image is invalid: " + reason}
}

func InvalidParam(message string) *Error {
	return &Error{http.StatusBadRequest, message}
}

func TemplateNotFound(name string) *Error {
	return &Error{http.StatusNotFound, fmt.Sprintf("template with name '%s' does not exist", name)}
}

func ItemNotFound(template string, id uint64) *Error {
	return &Error{http.StatusNotFound, fmt.Sprintf("item with id %d does not exist in template '%s'", id, template)}
}

// ItemsNotFound перечисляет ровно те id, которых не нашлось.
func ItemsNotFound(template string, missing []uint64) *Error {
	ids := make([]string, len(missing))
	for i, id := range missing {
		ids[i] = strconv.FormatUint(id, 10)
	}
	msg := fmt.Sprintf("items {%s} do not exist in template '%s'", strings.Join(ids, ", "), template)
	return &Error{http.StatusNotFound, msg}
}

// Forbidden — отказ контроля доступа; action попадает в сообщение дословно.
func Forbidden(action string) *Error {
	return &Error{http.StatusForbidden, action + " is not permitted for you"}
}

func AuthenticationFailed(reason string) *Error {
	return &Error{http.StatusUnauthorized, reason}
}
