package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ContactStatusPending    = "pending"
	ContactStatusProcessing = "processing"
	ContactStatusResolved   = "resolved"

	ContactCategoryReport     = "report"
	ContactCategoryHelp       = "help"
	ContactCategoryBug        = "bug"
	ContactCategorySuggestion = "suggestion"
	ContactCategoryOther      = "other"
)

// ContactCategoryLabels doubles as the stored subject line.
var ContactCategoryLabels = map[string]string{
	ContactCategoryReport:     "Báo Cáo (Report)",
	ContactCategoryHelp:       "Trợ Giúp (Help)",
	ContactCategoryBug:        "Báo Lỗi (Bug)",
	ContactCategorySuggestion: "Đề Xuất (Suggestion)",
	ContactCategoryOther:      "Khác (Other)",
}

func ValidContactStatus(s string) bool {
	switch s {
	case ContactStatusPending, ContactStatusProcessing, ContactStatusResolved:
		return true
	}
	return false
}

type Contact struct {
	bun.BaseModel `bun:"table:contacts"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	IGN              string    `bun:"ign,notnull" json:"ign"`
	Email            string    `bun:"email,notnull" json:"email"`
	Phone            *string   `bun:"phone" json:"phone,omitempty"`
	Category         string    `bun:"category,notnull" json:"category"`
	Subject          string    `bun:"subject" json:"subject"`
	Message          string    `bun:"message,notnull" json:"message"`
	ImageURL         *string   `bun:"image_url" json:"image_url,omitempty"`
	Status           string    `bun:"status,notnull" json:"status"`
	Read             bool      `bun:"read,notnull" json:"read"`
	DiscordMessageID *string   `bun:"discord_message_id" json:"discord_message_id,omitempty"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type ContactRequest struct {
	IGN      string `json:"ign"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

type ContactCounters struct {
	Unread     int `json:"unread"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
}
