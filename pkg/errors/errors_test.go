package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppError(t *testing.T) {
	t.Run("direct AppError", func(t *testing.T) {
		appErr := NotFound("ride not found", nil)
		got := GetAppError(appErr)
		require.NotNil(t, got)
		assert.Equal(t, 404, got.Status)
	})

	t.Run("AppError inside a wrapped chain", func(t *testing.T) {
		wrapped := Wrap(Conflict("email taken", nil), "sign up")
		got := GetAppError(wrapped)
		require.NotNil(t, got)
		assert.Equal(t, 409, got.Status)
		assert.Equal(t, "email taken", got.Message)
	})

	t.Run("plain error yields nil", func(t *testing.T) {
		assert.Nil(t, GetAppError(fmt.Errorf("connection reset")))
	})

	t.Run("nil error yields nil", func(t *testing.T) {
		assert.Nil(t, GetAppError(nil))
	})
}

func TestAppErrorMessage(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := Internal("database unavailable", cause)

	assert.Equal(t, "database unavailable: dial tcp: refused", err.Error())
	assert.Equal(t, cause, err.Unwrap())
}
