package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	cases := []struct {
		name   string
		status int
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, CodeUnauthenticated},
		{"not found", http.StatusNotFound, CodeNotFound},
		{"bad request", http.StatusBadRequest, CodeValidation},
		{"unprocessable", http.StatusUnprocessableEntity, CodeValidation},
		{"conflict", http.StatusConflict, CodeValidation},
		{"timeout", http.StatusRequestTimeout, CodeTransient},
		{"rate limited", http.StatusTooManyRequests, CodeTransient},
		{"server error", http.StatusInternalServerError, CodeTransient},
		{"bad gateway", http.StatusBadGateway, CodeTransient},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := FromStatus(tc.status, "")
			assert.Equal(t, tc.code, err.Code)
			assert.Equal(t, tc.status, err.HTTPStatus)
			assert.NotEmpty(t, err.Details, "detail falls back to the status text")
		})
	}
}

func TestPredicatesUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("add line: %w", Unauthenticated("token rejected"))

	assert.True(t, IsUnauthenticated(wrapped))
	assert.False(t, IsTransient(wrapped))
	assert.False(t, IsUnauthenticated(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "TRANSIENT: temporary failure (dial tcp refused)", Transient("dial tcp refused").Error())
	assert.Equal(t, "NOT_FOUND: resource not found", New(CodeNotFound, "resource not found", "", http.StatusNotFound).Error())
}
