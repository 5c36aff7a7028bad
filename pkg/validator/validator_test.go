package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type createAnalysisPayload struct {
	Name    string `json:"name" validate:"required,min=1,max=128"`
	Content string `json:"content" validate:"required"`
	TeamID  string `json:"teamId" validate:"omitempty,max=64"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(&createAnalysisPayload{Name: "weather-sync", Content: "console.log(1)"})
	require.NoError(t, err)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&createAnalysisPayload{})
	require.Error(t, err)

	ve, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, ve, 2)
	require.Equal(t, "name", ve[0].Field)
	require.Equal(t, "required", ve[0].Tag)
	require.Contains(t, err.Error(), "content failed on required")
}
