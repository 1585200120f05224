package discord

import (
	"testing"
	"time"

	"buildnchill-shop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "100.000 VNĐ", FormatVND(100000))
	assert.Equal(t, "0 VNĐ", FormatVND(0))
}

func TestOrderStatusMessage_LabelsAndColors(t *testing.T) {
	price := int64(50000)
	o := models.Order{ID: "abc", MCUsername: "Steve123", Product: "VIP Rank", Price: &price}
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	paid := OrderStatusMessage(o, models.OrderStatusPaid, now)
	require.Len(t, paid.Embeds, 1)
	assert.Equal(t, "🛒 ĐÃ THANH TOÁN", paid.Embeds[0].Title)
	assert.Equal(t, ColorBlue, paid.Embeds[0].Color)

	delivered := OrderStatusMessage(o, models.OrderStatusDelivered, now)
	assert.Equal(t, "🛒 ĐÃ GIAO HÀNG", delivered.Embeds[0].Title)
	assert.Equal(t, ColorGreen, delivered.Embeds[0].Color)
	assert.Equal(t, "2026-01-05T10:00:00Z", delivered.Embeds[0].Timestamp)
}

func TestContactEmbed_ColorPerStatus(t *testing.T) {
	c := models.Contact{IGN: "Alex", Category: models.ContactCategoryBug, Message: "lag"}

	assert.Equal(t, ColorRed, ContactEmbed(c, models.ContactStatusPending).Color)
	assert.Equal(t, ColorYellow, ContactEmbed(c, models.ContactStatusProcessing).Color)
	assert.Equal(t, ColorGreen, ContactEmbed(c, models.ContactStatusResolved).Color)

	e := ContactEmbed(c, models.ContactStatusResolved)
	assert.Contains(t, e.Title, "Báo Lỗi (Bug)")
	assert.Nil(t, e.Image)
}

func TestContactEmbed_AttachesImage(t *testing.T) {
	img := "https://cdn.example.net/contact-images/a.png"
	e := ContactEmbed(models.Contact{ImageURL: &img}, models.ContactStatusPending)
	require.NotNil(t, e.Image)
	assert.Equal(t, img, e.Image.URL)
}

func TestPaymentConfirmedMessage_Mention(t *testing.T) {
	msg := PaymentConfirmedMessage(models.Order{ID: "x"}, "741", time.Now())
	assert.Contains(t, msg.Content, "<@741>")

	msg = PaymentConfirmedMessage(models.Order{ID: "x"}, "", time.Now())
	assert.NotContains(t, msg.Content, "<@")
}
