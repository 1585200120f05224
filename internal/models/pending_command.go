package models

import (
	"time"

	"github.com/uptrace/bun"
)

const CommandStatusPending = "pending"

// PendingCommand is a game command queued for the in-game agent.
type PendingCommand struct {
	bun.BaseModel `bun:"table:pending_commands"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	Command          string    `bun:"command,notnull" json:"command"`
	MCUsername       string    `bun:"mc_username,notnull" json:"mc_username"`
	Status           string    `bun:"status,notnull" json:"status"`
	DiscordMessageID *string   `bun:"discord_message_id" json:"discord_message_id,omitempty"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
