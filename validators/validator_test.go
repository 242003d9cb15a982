package validators

import (
	"net/http"
	"testing"

	"github.com/anonto42/nano-midea/engagement/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(&models.CreatePostRequest{Content: "hello"}))
	require.NoError(t, v.Validate(&models.SharePostRequest{}))

	err := v.Validate(&models.CreatePostRequest{Visibility: "friends"})
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Contains(t, he.Message, "Content is required")
	assert.Contains(t, he.Message, "Visibility must be one of")
}
