package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SingletonID is the primary key of the settings and status rows.
const SingletonID = 1

const (
	ServerOnline  = "Online"
	ServerOffline = "Offline"
)

type SiteSettings struct {
	bun.BaseModel `bun:"table:site_settings"`

	ID              int       `bun:"id,pk" json:"-"`
	ServerIP        string    `bun:"server_ip" json:"server_ip"`
	ServerVersion   string    `bun:"server_version" json:"server_version"`
	ContactEmail    string    `bun:"contact_email" json:"contact_email"`
	ContactPhone    string    `bun:"contact_phone" json:"contact_phone"`
	DiscordURL      string    `bun:"discord_url" json:"discord_url"`
	SiteTitle       string    `bun:"site_title" json:"site_title"`
	MaintenanceMode bool      `bun:"maintenance_mode,notnull" json:"maintenance_mode"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// SettingsPatch carries the fields an admin submitted; nil means unchanged.
type SettingsPatch struct {
	ServerIP        *string `json:"server_ip"`
	ServerVersion   *string `json:"server_version"`
	ContactEmail    *string `json:"contact_email"`
	ContactPhone    *string `json:"contact_phone"`
	DiscordURL      *string `json:"discord_url"`
	SiteTitle       *string `json:"site_title"`
	MaintenanceMode *bool   `json:"maintenance_mode"`
}

type ServerStatus struct {
	bun.BaseModel `bun:"table:server_status"`

	ID         int       `bun:"id,pk" json:"-"`
	Status     string    `bun:"status,notnull" json:"status"`
	Players    int       `bun:"players,notnull" json:"players"`
	MaxPlayers int       `bun:"max_players,notnull" json:"max_players"`
	Version    string    `bun:"version" json:"version"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// DefaultServerStatus is used when neither the database nor the status API
// can provide a value.
func DefaultServerStatus() ServerStatus {
	return ServerStatus{
		ID:         SingletonID,
		Status:     ServerOnline,
		Players:    0,
		MaxPlayers: 500,
		Version:    "1.20.4",
	}
}

type News struct {
	bun.BaseModel `bun:"table:news"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description"`
	Content     string    `bun:"content" json:"content"`
	Image       string    `bun:"image" json:"image"`
	Date        string    `bun:"date,notnull" json:"date"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// ServerStatusUpdate is a manual override from the admin panel.
type ServerStatusUpdate struct {
	Online     bool   `json:"online"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	Version    string `json:"version"`
}

// NewsRequest is the editable part of a news post.
type NewsRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Image       string `json:"image"`
	Date        string `json:"date"`
}
