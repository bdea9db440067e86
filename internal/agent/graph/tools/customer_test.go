package tools

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-support-assistant/server/internal/store"
)

func TestMyOrderStatusTool(t *testing.T) {
	now := time.Date(2025, 8, 4, 12, 0, 0, 0, time.UTC)

	ownStore := func() *fakeStore {
		return &fakeStore{
			orders: map[int]*store.Order{
				1001: {
					OrderID:         1001,
					CustomerID:      501,
					Status:          "Shipped",
					OrderDate:       time.Date(2025, 7, 30, 9, 0, 0, 0, time.UTC),
					StatusUpdatedAt: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
					TrackingNo:      strPtr("TRK1001"),
					Carrier:         strPtr("UPS"),
					TotalAmount:     129.90,
					Currency:        "USD",
				},
				2001: {
					OrderID:    2001,
					CustomerID: 502,
					Status:     "Processing",
				},
			},
			events: map[string]*store.ShipmentEvent{
				"TRK1001": {
					TrackingNo: "TRK1001",
					Status:     "In Transit",
					Location:   strPtr("Newark, NJ"),
					EventTime:  time.Date(2025, 8, 3, 7, 30, 0, 0, time.UTC),
				},
			},
		}
	}

	t.Run("own order with tracking includes latest event", func(t *testing.T) {
		var out MyOrderStatusOutput
		invokeTool(t, createMyOrderStatusTool(testDeps(ownStore(), now)), MyOrderStatusInput{OrderID: 1001}, &out)

		require.True(t, out.Found)
		assert.Equal(t, "Shipped", out.Status)
		assert.Equal(t, "TRK1001", out.TrackingNo)
		assert.Equal(t, "USD", out.Currency)
		assert.Empty(t, out.Message)
		require.NotNil(t, out.LastEvent)
		assert.Equal(t, "In Transit", out.LastEvent.Status)
		assert.Equal(t, "2025-08-03T07:30:00Z", out.LastEvent.EventTime)
	})

	t.Run("another customer's order is reported as not found", func(t *testing.T) {
		var out MyOrderStatusOutput
		invokeTool(t, createMyOrderStatusTool(testDeps(ownStore(), now)), MyOrderStatusInput{OrderID: 2001}, &out)

		assert.False(t, out.Found)
		assert.Equal(t, 2001, out.OrderID)
		assert.Equal(t, "Заказ не найден или не принадлежит вам", out.Message)
		assert.Empty(t, out.Status)
		assert.Nil(t, out.LastEvent)
	})

	t.Run("unknown order is reported as not found", func(t *testing.T) {
		var out MyOrderStatusOutput
		invokeTool(t, createMyOrderStatusTool(testDeps(ownStore(), now)), MyOrderStatusInput{OrderID: 9999}, &out)

		assert.False(t, out.Found)
		assert.Equal(t, "Заказ не найден или не принадлежит вам", out.Message)
	})

	t.Run("customer_id override scopes the lookup", func(t *testing.T) {
		var out MyOrderStatusOutput
		invokeTool(t, createMyOrderStatusTool(testDeps(ownStore(), now)),
			MyOrderStatusInput{OrderID: 2001, CustomerID: 502}, &out)

		require.True(t, out.Found)
		assert.Equal(t, "Processing", out.Status)
		assert.Nil(t, out.LastEvent)
	})

	t.Run("store failure degrades to not found", func(t *testing.T) {
		fs := &fakeStore{err: errors.New("connection reset")}
		var out MyOrderStatusOutput
		invokeTool(t, createMyOrderStatusTool(testDeps(fs, now)), MyOrderStatusInput{OrderID: 1001}, &out)

		assert.False(t, out.Found)
		assert.Equal(t, "Заказ не найден или не принадлежит вам", out.Message)
	})
}
