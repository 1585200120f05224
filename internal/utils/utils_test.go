package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, http.StatusBadRequest, "Invalid request", errors.New("boom")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid request", resp.Message)
	assert.Equal(t, "boom", resp.Error)
}

func TestStartOfDayKeepsLocation(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	in := time.Date(2024, 3, 9, 23, 59, 0, 0, loc)

	got := StartOfDay(in)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestSameDayUsesLocation(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	a := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC) // 01:00 on the 10th in ICT
	b := time.Date(2024, 3, 10, 9, 0, 0, 0, loc) // 02:00 on the 10th in UTC

	assert.True(t, SameDay(a, b, loc))
	assert.False(t, SameDay(a, b, time.UTC))
}
