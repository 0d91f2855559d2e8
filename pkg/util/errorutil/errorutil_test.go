package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("wrapped domain error is unwrapped", func(t *testing.T) {
		base := NewConflict("ACCOUNT_EXISTS", "Account already exists")
		got := ToDomainError(fmt.Errorf("create: %w", base))
		require.NotNil(t, got)
		assert.Equal(t, "ACCOUNT_EXISTS", got.Code)
		assert.Equal(t, http.StatusConflict, got.HTTPStatus)
	})

	t.Run("fiber error keeps its status", func(t *testing.T) {
		got := ToDomainError(fiber.ErrNotFound)
		assert.Equal(t, "HTTP_404", got.Code)
		assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	})

	t.Run("unknown error hides cause from message", func(t *testing.T) {
		cause := errors.New("connection reset by peer")
		got := ToDomainError(cause)
		assert.Equal(t, "INTERNAL_ERROR", got.Code)
		assert.Equal(t, "internal server error", got.Message)
		assert.ErrorIs(t, got, cause)
	})
}

func TestUpstreamError(t *testing.T) {
	cause := errors.New("smtp: 421 try later")
	err := NewUpstreamError("NOTIFICATION_FAILED", "notification could not be delivered", cause)

	de := ToDomainError(err)
	assert.Equal(t, http.StatusBadGateway, de.HTTPStatus)
	assert.NotContains(t, de.Message, "421")
	assert.ErrorIs(t, err, cause)
}
