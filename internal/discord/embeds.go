package discord

import (
	"fmt"
	"time"

	"buildnchill-shop/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Embed colors.
const (
	ColorRed    = 15158332
	ColorYellow = 16766720
	ColorBlue   = 3447003
	ColorGreen  = 3066993
)

const (
	shopFooter    = "BuildnChill Shop System"
	contactFooter = "BuildnChill Support System"
	unknown       = "Không rõ"
)

var vnPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders 100000 as "100.000 VNĐ".
func FormatVND(amount int64) string {
	return vnPrinter.Sprintf("%d VNĐ", amount)
}

func paymentLabel(method string) string {
	if method == models.PaymentMethodQR {
		return "QR Code"
	}
	return "Chuyển Khoản"
}

func orEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func mention(userID string) string {
	if userID == "" {
		return ""
	}
	return fmt.Sprintf("<@%s> ", userID)
}

// PaymentConfirmedMessage is posted when a player reports a completed
// transfer. Its id is later stored in the order notes.
func PaymentConfirmedMessage(o models.Order, mentionID string, now time.Time) Message {
	embed := Embed{
		Title:       "🛒 THANH TOÁN THÀNH CÔNG",
		Description: fmt.Sprintf("🔔 %sNgười chơi đã xác nhận đã thanh toán xong! Admin vui lòng kiểm tra ngân hàng.", mention(mentionID)),
		Color:       ColorYellow,
		Fields: []Field{
			{Name: "👤 Người chơi", Value: orEmpty(o.MCUsername, unknown), Inline: true},
			{Name: "📦 Sản phẩm", Value: orEmpty(o.Product, unknown), Inline: true},
			{Name: "💰 Giá tiền", Value: FormatVND(o.PriceValue()), Inline: true},
			{Name: "💳 Thanh toán", Value: paymentLabel(o.PaymentMethod), Inline: true},
			{Name: "🆔 Mã đơn hàng", Value: fmt.Sprintf("`%s`", orEmpty(o.ID, "N/A"))},
			{Name: "📜 Lệnh thực thi", Value: fmt.Sprintf("`%s`", orEmpty(o.Command, "N/A"))},
		},
		Footer:    &Footer{Text: shopFooter},
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	return Message{
		Content: fmt.Sprintf("🔔 %s**XÁC NHẬN THANH TOÁN**", mention(mentionID)),
		Embeds:  []Embed{embed},
	}
}

// OrderStatusMessage replaces the order message once an admin confirms
// payment or delivery.
func OrderStatusMessage(o models.Order, status string, now time.Time) Message {
	label, color := "ĐÃ GIAO HÀNG", ColorGreen
	description := fmt.Sprintf("✅ Đơn hàng của **%s** đã được giao thành công!", o.MCUsername)
	if status == models.OrderStatusPaid {
		label, color = "ĐÃ THANH TOÁN", ColorBlue
		description = fmt.Sprintf("💰 Đơn hàng của **%s** đã được thanh toán thành công và đang chờ giao!", o.MCUsername)
	}

	embed := Embed{
		Title:       "🛒 " + label,
		Description: description,
		Color:       color,
		Fields: []Field{
			{Name: "👤 Người chơi", Value: orEmpty(o.MCUsername, unknown), Inline: true},
			{Name: "📦 Sản phẩm", Value: orEmpty(o.Product, unknown), Inline: true},
			{Name: "💰 Giá tiền", Value: FormatVND(o.PriceValue()), Inline: true},
			{Name: "🆔 Mã đơn hàng", Value: fmt.Sprintf("`%s`", orEmpty(o.ID, "N/A"))},
			{Name: "✅ Trạng thái hiện tại", Value: fmt.Sprintf("**%s**", label)},
		},
		Footer:    &Footer{Text: shopFooter + " - Status Updated"},
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	return Message{Embeds: []Embed{embed}}
}

type contactStyle struct {
	label string
	color int
}

var contactStyles = map[string]contactStyle{
	models.ContactStatusPending:    {"🔴 Đã Nhận (Chờ Xử Lý)", ColorRed},
	models.ContactStatusProcessing: {"🟡 Đang Kiểm Tra", ColorYellow},
	models.ContactStatusResolved:   {"🟢 Đã Giải Quyết", ColorGreen},
}

// ContactColor is exposed for tests and the admin UI legend.
func ContactColor(status string) int {
	if s, ok := contactStyles[status]; ok {
		return s.color
	}
	return ColorRed
}

func ContactEmbed(c models.Contact, status string) Embed {
	style, ok := contactStyles[status]
	if !ok {
		style = contactStyle{"🔴 Đã Nhận", ColorRed}
	}

	category := models.ContactCategoryLabels[c.Category]
	if category == "" {
		category = c.Category
	}

	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	embed := Embed{
		Title:       fmt.Sprintf("%s | LIÊN HỆ: %s", style.label, orEmpty(category, unknown)),
		Description: "🔔 **Yêu cầu hỗ trợ từ Website**",
		Color:       style.color,
		Fields: []Field{
			{Name: "👤 Người chơi", Value: orEmpty(c.IGN, unknown), Inline: true},
			{Name: "🏷️ Danh mục", Value: orEmpty(category, "Khác"), Inline: true},
			{Name: "💬 Tin nhắn", Value: orEmpty(c.Message, "N/A")},
		},
		Footer:    &Footer{Text: contactFooter},
		Timestamp: created.UTC().Format(time.RFC3339),
	}
	if c.ImageURL != nil && *c.ImageURL != "" {
		embed.Image = &Image{URL: *c.ImageURL}
	}
	return embed
}

func NewContactMessage(c models.Contact, mentionID string) Message {
	return Message{
		Content: fmt.Sprintf("🔔 %s**CÓ LIÊN HỆ MỚI!**", mention(mentionID)),
		Embeds:  []Embed{ContactEmbed(c, models.ContactStatusPending)},
	}
}

func ContactStatusMessage(c models.Contact, status string) Message {
	return Message{Embeds: []Embed{ContactEmbed(c, status)}}
}
