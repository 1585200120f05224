package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMessageID(t *testing.T) {
	id, ok := ExtractMessageID("foo [msg_id:123456] bar")
	assert.True(t, ok)
	assert.Equal(t, "123456", id)

	_, ok = ExtractMessageID("Đơn hàng từ website")
	assert.False(t, ok)

	_, ok = ExtractMessageID("[msg_id:abc]")
	assert.False(t, ok)
}

func TestOrderDerivedState(t *testing.T) {
	price := int64(50000)

	tests := []struct {
		name    string
		order   Order
		display string
		paid    bool
		final   bool
	}{
		{"pending", Order{Status: OrderStatusPending}, OrderStatusPending, false, false},
		{"paid", Order{Status: OrderStatusPaid}, OrderStatusPaid, true, false},
		{"delivered", Order{Status: OrderStatusDelivered}, OrderStatusDelivered, true, true},
		{"flag wins", Order{Status: OrderStatusPending, Delivered: true}, OrderStatusDelivered, true, true},
		{"unknown status", Order{Status: "cancelled"}, OrderStatusPending, false, false},
		{"priced", Order{Status: OrderStatusPaid, Price: &price}, OrderStatusPaid, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.display, tt.order.DisplayStatus())
			assert.Equal(t, tt.paid, tt.order.IsPaid())
			assert.Equal(t, tt.final, tt.order.IsFinal())
		})
	}
}

func TestPriceValue(t *testing.T) {
	assert.Equal(t, int64(0), Order{}.PriceValue())

	price := int64(120000)
	assert.Equal(t, int64(120000), Order{Price: &price}.PriceValue())
}

func TestNewOrderView(t *testing.T) {
	v := NewOrderView(Order{ID: "o1", Status: OrderStatusPaid, Delivered: true})
	assert.Equal(t, "o1", v.ID)
	assert.Equal(t, OrderStatusDelivered, v.DisplayStatus)
}

func TestValidContactStatus(t *testing.T) {
	for _, s := range []string{ContactStatusPending, ContactStatusProcessing, ContactStatusResolved} {
		assert.True(t, ValidContactStatus(s), s)
	}
	assert.False(t, ValidContactStatus(""))
	assert.False(t, ValidContactStatus("closed"))
}
