package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAs(t *testing.T) {
	err := TemplateNotFound("20240101-demo")
	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)

	wrapped := fmt.Errorf("details: %w", err)
	appErr, ok = As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "дубликат шаблона",
			err:     TemplateAlreadyExists("demo"),
			status:  http.StatusConflict,
			message: "template with name 'demo' already exists",
		},
		{
			name:    "запрет действия",
			err:     Forbidden("deleting templates"),
			status:  http.StatusForbidden,
			message: "deleting templates is not permitted for you",
		},
		{
			name:    "элемент не найден",
			err:     ItemNotFound("20240101-demo", 77),
			status:  http.StatusNotFound,
			message: "item with id 77 does not exist in template '20240101-demo'",
		},
		{
			name:    "перечисляются только отсутствующие id",
			err:     ItemsNotFound("20240101-demo", []uint64{3, 9}),
			status:  http.StatusNotFound,
			message: "items {3, 9} do not exist in template '20240101-demo'",
		},
		{
			name:    "ошибка аутентификации",
			err:     AuthenticationFailed("invalid password"),
			status:  http.StatusUnauthorized,
			message: "invalid password",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr, ok := As(tt.err)
			assert.True(t, ok)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}
