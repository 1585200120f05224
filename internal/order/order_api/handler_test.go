package order_api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"buildnchill-shop/internal/order"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{order.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: mc_username is required", order.ErrInvalidInput), http.StatusBadRequest},
		{order.ErrOrderNotFound, http.StatusNotFound},
		{order.ErrProductUnavailable, http.StatusUnprocessableEntity},
		{order.ErrOrderExists, http.StatusConflict},
		{order.ErrOrderDelivered, http.StatusConflict},
		{order.ErrInvalidTransition, http.StatusConflict},
		{order.ErrOrderConflict, http.StatusConflict},
		{order.ErrOrderBusy, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
