package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"buildnchill-shop/internal/models"
)

// InstantiateCommand substitutes the buyer's name into a product command.
func InstantiateCommand(template, username string) string {
	return strings.ReplaceAll(template, models.UsernamePlaceholder, username)
}

// textComponent is a Minecraft JSON chat component.
type textComponent struct {
	Text  string          `json:"text"`
	Color string          `json:"color,omitempty"`
	Bold  bool            `json:"bold,omitempty"`
	Extra []textComponent `json:"extra,omitempty"`
}

// BroadcastCommand builds the tellraw that tells the buyer the order was
// delivered.
func BroadcastCommand(username, product string) (string, error) {
	msg := textComponent{Extra: []textComponent{
		{Text: "[", Color: "dark_gray"},
		{Text: "🪸", Color: "light_purple", Bold: true},
		{Text: "]", Color: "dark_gray"},
		{Text: " BnC-Shop", Color: "light_purple", Bold: true},
		{Text: " → ", Color: "dark_gray"},
		{Text: "Giao thành công đơn hàng ", Color: "green"},
		{Text: product, Color: "aqua"},
		{Text: ". Cảm ơn bạn đã ủng hộ!", Color: "green"},
	}}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return "", fmt.Errorf("encode tellraw: %w", err)
	}
	return fmt.Sprintf("tellraw %s %s", username, strings.TrimSpace(buf.String())), nil
}

// DeliveryCommands returns the queue rows written when an order is paid:
// the product command, then the chat broadcast. Orders without a command
// queue nothing.
func DeliveryCommands(o models.Order, messageID *string) ([]models.PendingCommand, error) {
	if strings.TrimSpace(o.Command) == "" {
		return nil, nil
	}
	broadcast, err := BroadcastCommand(o.MCUsername, o.Product)
	if err != nil {
		return nil, err
	}
	return []models.PendingCommand{
		{Command: o.Command, MCUsername: o.MCUsername, Status: models.CommandStatusPending, DiscordMessageID: messageID},
		{Command: broadcast, MCUsername: o.MCUsername, Status: models.CommandStatusPending, DiscordMessageID: messageID},
	}, nil
}
