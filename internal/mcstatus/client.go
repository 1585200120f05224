// Package mcstatus queries a public Minecraft server status API.
package mcstatus

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"buildnchill-shop/internal/models"

	"github.com/tidwall/gjson"
)

const (
	defaultMaxPlayers = 500
	unknownVersion    = "Unknown"
)

// Status is the live view of the game server.
type Status struct {
	Online     bool
	Players    int
	MaxPlayers int
	Version    string
}

// Apply overlays the live status on a persisted row. An unknown live version
// keeps the persisted one.
func (s Status) Apply(base models.ServerStatus) models.ServerStatus {
	out := base
	out.Status = models.ServerOffline
	if s.Online {
		out.Status = models.ServerOnline
	}
	out.Players = s.Players
	out.MaxPlayers = s.MaxPlayers
	if s.Version != unknownVersion && s.Version != "" {
		out.Version = s.Version
	}
	return out
}

type Client struct {
	BaseURL     string
	DefaultPort string
	HTTP        *http.Client
}

func NewClient(baseURL, defaultPort string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		DefaultPort: defaultPort,
		HTTP:        &http.Client{Timeout: timeout},
	}
}

// Address formats the server address the API expects: the bare host when the
// port is the default one, host:port otherwise.
func (c *Client) Address(serverIP string) string {
	serverIP = strings.TrimSpace(serverIP)
	host, port, err := net.SplitHostPort(serverIP)
	if err != nil {
		host, port = serverIP, ""
	}
	if port == "" || port == c.DefaultPort {
		return host
	}
	return host + ":" + port
}

// Fetch returns nil, nil for an empty address or an API-level error body, so
// callers fall back to the persisted status.
func (c *Client) Fetch(ctx context.Context, serverIP string) (*Status, error) {
	if strings.TrimSpace(serverIP) == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/v2/status/java/%s", c.BaseURL, c.Address(serverIP))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status api returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("status api returned malformed json")
	}
	return Parse(body), nil
}

// Parse tolerates the field names used by the different status providers.
func Parse(body []byte) *Status {
	doc := gjson.ParseBytes(body)
	if doc.Get("error").Exists() {
		return nil
	}

	if !doc.Get("online").Bool() {
		return &Status{Online: false, MaxPlayers: defaultMaxPlayers, Version: unknownVersion}
	}

	players := firstInt(doc, 0, "players.online", "players.now", "players.current", "players")
	if players < 0 {
		players = 0
	}
	maxPlayers := firstInt(doc, defaultMaxPlayers, "players.max", "max_players", "maxPlayers")
	if maxPlayers < 1 {
		maxPlayers = 1
	}

	version := unknownVersion
	for _, path := range []string{"version.name_clean", "version.name", "version.name_raw", "version"} {
		if v := doc.Get(path); v.Type == gjson.String && v.String() != "" {
			version = v.String()
			break
		}
	}

	return &Status{Online: true, Players: players, MaxPlayers: maxPlayers, Version: version}
}

func firstInt(doc gjson.Result, fallback int, paths ...string) int {
	for _, path := range paths {
		v := doc.Get(path)
		switch v.Type {
		case gjson.Number:
			return int(v.Int())
		case gjson.String:
			if n, err := strconv.Atoi(v.String()); err == nil {
				return n
			}
		}
	}
	return fallback
}
