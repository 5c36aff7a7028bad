package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appValidator "github.com/scstanton20/tago-analysis-worker-sub009/pkg/validator"
)

func TestBindAndValidate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type payload struct {
		Name string `json:"name" validate:"required,min=2"`
	}

	run := func(body string) (*httptest.ResponseRecorder, bool) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		var dest payload
		ok := bindAndValidate(c, &dest)
		return w, ok
	}

	w, ok := run(`{"name":"fine"}`)
	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, w.Code)

	w, ok = run(`{"name":""}`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name is required")

	w, ok = run(`{not json`)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON payload")
}

func TestFormatValidationError(t *testing.T) {
	errs := appValidator.ValidationErrors{
		{Field: "name", Tag: "required"},
		{Field: "color", Tag: "max", Param: "32"},
	}
	message := formatValidationError(errs)
	assert.Contains(t, message, "name is required")
	assert.Contains(t, message, "color must be at most 32 characters")

	assert.Equal(t, "invalid request payload", formatValidationError(nil))
}

func TestParseIntQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?version=3&junk=x", nil)

	assert.Equal(t, 3, parseIntQuery(c, "version", 0))
	assert.Equal(t, 0, parseIntQuery(c, "junk", 0))
	assert.Equal(t, 7, parseIntQuery(c, "missing", 7))
}
