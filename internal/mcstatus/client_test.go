package mcstatus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buildnchill-shop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress(t *testing.T) {
	c := NewClient("https://api.example.net", "25190", time.Second)

	assert.Equal(t, "play.example.net", c.Address("play.example.net:25190"))
	assert.Equal(t, "play.example.net", c.Address(" play.example.net "))
	assert.Equal(t, "play.example.net:25565", c.Address("play.example.net:25565"))
}

func TestParse_Online(t *testing.T) {
	s := Parse([]byte(`{"online":true,"players":{"online":12,"max":100},"version":{"name_clean":"1.21.4","name_raw":"§a1.21.4"}}`))
	require.NotNil(t, s)
	assert.True(t, s.Online)
	assert.Equal(t, 12, s.Players)
	assert.Equal(t, 100, s.MaxPlayers)
	assert.Equal(t, "1.21.4", s.Version)
}

func TestParse_FieldFallbacks(t *testing.T) {
	s := Parse([]byte(`{"online":true,"players":{"now":"7"},"version":"Paper 1.20"}`))
	require.NotNil(t, s)
	assert.Equal(t, 7, s.Players)
	assert.Equal(t, 500, s.MaxPlayers)
	assert.Equal(t, "Paper 1.20", s.Version)

	s = Parse([]byte(`{"online":true,"players":{"online":-3,"max":0}}`))
	assert.Equal(t, 0, s.Players)
	assert.Equal(t, 1, s.MaxPlayers)
	assert.Equal(t, "Unknown", s.Version)
}

func TestParse_OfflineAndError(t *testing.T) {
	s := Parse([]byte(`{"online":false}`))
	require.NotNil(t, s)
	assert.False(t, s.Online)
	assert.Equal(t, 500, s.MaxPlayers)

	assert.Nil(t, Parse([]byte(`{"error":"invalid address"}`)))
}

func TestApply_KeepsPersistedVersionWhenUnknown(t *testing.T) {
	base := models.DefaultServerStatus()
	base.Version = "1.21.4"

	out := Status{Online: true, Players: 3, MaxPlayers: 50, Version: "Unknown"}.Apply(base)
	assert.Equal(t, models.ServerOnline, out.Status)
	assert.Equal(t, 3, out.Players)
	assert.Equal(t, "1.21.4", out.Version)

	out = Status{Online: false, MaxPlayers: 500, Version: "Unknown"}.Apply(base)
	assert.Equal(t, models.ServerOffline, out.Status)
}

func TestFetch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"online":true,"players":{"online":4,"max":20},"version":{"name":"1.21"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "25190", time.Second)
	s, err := c.Fetch(context.Background(), "play.example.net:25190")
	require.NoError(t, err)
	assert.Equal(t, "/v2/status/java/play.example.net", gotPath)
	assert.Equal(t, 4, s.Players)
	assert.Equal(t, "1.21", s.Version)
}

func TestFetch_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "25190", time.Second)
	_, err := c.Fetch(context.Background(), "play.example.net")
	assert.Error(t, err)

	s, err := c.Fetch(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, s)
}
