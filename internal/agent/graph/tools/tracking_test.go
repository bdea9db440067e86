package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-support-assistant/server/internal/store"
)

func TestTrackOrderBasicTool(t *testing.T) {
	now := time.Date(2025, 8, 4, 12, 0, 0, 0, time.UTC)
	moscow := time.FixedZone("MSK", 3*60*60)

	t.Run("shipped order with last event, timestamps normalized to UTC", func(t *testing.T) {
		fs := &fakeStore{
			orders: map[int]*store.Order{
				1001: {
					OrderID:    1001,
					Status:     "Shipped",
					TrackingNo: strPtr("TRK1001"),
					Carrier:    strPtr("UPS"),
					ETADate:    timePtr(time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC)),
				},
			},
			events: map[string]*store.ShipmentEvent{
				"TRK1001": {
					TrackingNo: "TRK1001",
					Status:     "In Transit",
					Location:   strPtr("Newark, NJ"),
					EventTime:  time.Date(2025, 8, 3, 10, 30, 0, 0, moscow),
				},
			},
		}
		var out TrackOrderBasicOutput
		invokeTool(t, createTrackOrderBasicTool(testDeps(fs, now)), TrackOrderBasicInput{OrderID: 1001}, &out)

		require.True(t, out.Found)
		assert.Equal(t, "Shipped", out.Status)
		assert.Equal(t, "TRK1001", out.TrackingNo)
		require.NotNil(t, out.LastShipmentEvent)
		assert.Equal(t, "In Transit", out.LastShipmentEvent.Status)
		assert.Equal(t, "Newark, NJ", out.LastShipmentEvent.Location)
		assert.Equal(t, "2025-08-03T07:30:00Z", out.LastShipmentEvent.EventTime)
	})

	t.Run("unknown order returns bare not-found shape", func(t *testing.T) {
		fs := &fakeStore{orders: map[int]*store.Order{}}
		var out TrackOrderBasicOutput
		invokeTool(t, createTrackOrderBasicTool(testDeps(fs, now)), TrackOrderBasicInput{OrderID: 4242}, &out)

		assert.False(t, out.Found)
		assert.Equal(t, 4242, out.OrderID)
		assert.Empty(t, out.Status)
		assert.Empty(t, out.TrackingNo)
		assert.Nil(t, out.LastShipmentEvent)
	})

	t.Run("store failure degrades to not found", func(t *testing.T) {
		fs := &fakeStore{err: assert.AnError}
		var out TrackOrderBasicOutput
		invokeTool(t, createTrackOrderBasicTool(testDeps(fs, now)), TrackOrderBasicInput{OrderID: 1001}, &out)

		assert.False(t, out.Found)
	})

	t.Run("order without tracking number skips event lookup", func(t *testing.T) {
		fs := &fakeStore{
			orders: map[int]*store.Order{
				1002: {OrderID: 1002, Status: "PendingPayment"},
			},
		}
		var out TrackOrderBasicOutput
		invokeTool(t, createTrackOrderBasicTool(testDeps(fs, now)), TrackOrderBasicInput{OrderID: 1002}, &out)

		require.True(t, out.Found)
		assert.Empty(t, out.TrackingNo)
		assert.Nil(t, out.LastShipmentEvent)
	})
}

func TestCheapestDeliveryTool(t *testing.T) {
	now := time.Date(2025, 8, 4, 12, 0, 0, 0, time.UTC)
	methods := []store.ShippingMethod{
		{Name: "Standard", Region: "US", Carrier: "UPS", Cost: 5.00, EstDaysMin: 3, EstDaysMax: 5},
		{Name: "Express", Region: "US", Carrier: "UPS", Cost: 15.00, EstDaysMin: 1, EstDaysMax: 2},
		{Name: "International", Region: "World", Carrier: "DHL", Cost: 25.00, EstDaysMin: 7, EstDaysMax: 12},
	}

	t.Run("cheapest without constraint", func(t *testing.T) {
		fs := &fakeStore{methods: methods}
		var out CheapestDeliveryOutput
		invokeTool(t, createCheapestDeliveryTool(testDeps(fs, now)), CheapestDeliveryInput{Region: "US"}, &out)

		require.True(t, out.Found)
		assert.Equal(t, "Standard", out.Option.Name)
	})

	t.Run("max_days constraint picks faster option", func(t *testing.T) {
		fs := &fakeStore{methods: methods}
		maxDays := 2
		var out CheapestDeliveryOutput
		invokeTool(t, createCheapestDeliveryTool(testDeps(fs, now)), CheapestDeliveryInput{Region: "US", MaxDays: &maxDays}, &out)

		require.True(t, out.Found)
		assert.Equal(t, "Express", out.Option.Name)
	})

	t.Run("no option satisfies the constraint", func(t *testing.T) {
		fs := &fakeStore{methods: nil}
		var out CheapestDeliveryOutput
		invokeTool(t, createCheapestDeliveryTool(testDeps(fs, now)), CheapestDeliveryInput{Region: "US"}, &out)

		assert.False(t, out.Found)
		assert.Nil(t, out.Option)
	})
}

func TestMyOrdersToolDefaultsToSessionCustomer(t *testing.T) {
	now := time.Date(2025, 8, 4, 12, 0, 0, 0, time.UTC)
	fs := &fakeStore{customerOrders: map[int][]store.Order{
		501: {
			{OrderID: 1001, Status: "Shipped", OrderDate: time.Date(2025, 7, 30, 10, 0, 0, 0, time.UTC), TotalAmount: 59.99, Currency: "USD"},
		},
	}}

	var out MyOrdersOutput
	invokeTool(t, createMyOrdersTool(testDeps(fs, now)), CustomerScopedInput{}, &out)

	assert.Equal(t, 501, out.CustomerID)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, 1001, out.Orders[0].OrderID)
}
