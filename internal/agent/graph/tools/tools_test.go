package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/require"

	"github.com/cs-support-assistant/server/internal/agent/model"
	"github.com/cs-support-assistant/server/internal/store"
)

// fakeStore is an in-memory SupportStore. A non-nil err makes every lookup
// fail, to exercise the degrade-to-not-found paths.
type fakeStore struct {
	err error

	orders           map[int]*store.Order
	ordersByTracking map[string]*store.Order
	events           map[string]*store.ShipmentEvent
	methods          []store.ShippingMethod
	payments         map[int]*store.Payment
	returns          map[int]*store.Return
	delivered        map[int]*time.Time
	customerOrders   map[int][]store.Order
	customerPayments map[int][]store.Payment
	customerReturns  map[int][]store.Return
}

func (f *fakeStore) OrderByID(ctx context.Context, orderID int) (*store.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orders[orderID], nil
}

func (f *fakeStore) OrderForCustomer(ctx context.Context, orderID, customerID int) (*store.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o := f.orders[orderID]
	if o == nil || o.CustomerID != customerID {
		return nil, nil
	}
	return o, nil
}

func (f *fakeStore) OrderByTrackingNo(ctx context.Context, trackingNo string) (*store.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ordersByTracking[trackingNo], nil
}

func (f *fakeStore) LatestShipmentEvent(ctx context.Context, trackingNo string) (*store.ShipmentEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events[trackingNo], nil
}

func (f *fakeStore) ShippingMethods(ctx context.Context, region string) ([]store.ShippingMethod, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []store.ShippingMethod
	for _, m := range f.methods {
		if m.Region == region || m.Region == "World" {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) CheapestShippingMethod(ctx context.Context, region string, maxDays *int) (*store.ShippingMethod, error) {
	if f.err != nil {
		return nil, f.err
	}
	var best *store.ShippingMethod
	for i := range f.methods {
		m := f.methods[i]
		if m.Region != region && m.Region != "World" {
			continue
		}
		if maxDays != nil && m.EstDaysMax > *maxDays {
			continue
		}
		if best == nil || m.Cost < best.Cost {
			best = &m
		}
	}
	return best, nil
}

func (f *fakeStore) ShippingMethodByName(ctx context.Context, region, name string) (*store.ShippingMethod, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.methods {
		m := f.methods[i]
		if (m.Region == region || m.Region == "World") && m.Name == name {
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) LastPayment(ctx context.Context, orderID int) (*store.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.payments[orderID], nil
}

func (f *fakeStore) LastReturn(ctx context.Context, orderID int) (*store.Return, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.returns[orderID], nil
}

func (f *fakeStore) DeliveredAt(ctx context.Context, orderID int) (*time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.delivered[orderID], nil
}

func (f *fakeStore) OrdersByCustomer(ctx context.Context, customerID int) ([]store.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.customerOrders[customerID], nil
}

func (f *fakeStore) PaymentsByCustomer(ctx context.Context, customerID int) ([]store.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.customerPayments[customerID], nil
}

func (f *fakeStore) ReturnsByCustomer(ctx context.Context, customerID int) ([]store.Return, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.customerReturns[customerID], nil
}

var _ store.SupportStore = (*fakeStore)(nil)

// testDeps builds tool deps with a fixed clock so window rules are stable.
func testDeps(fs *fakeStore, now time.Time) *Deps {
	return &Deps{
		Store: fs,
		Policy: model.PolicyConfig{
			PaymentCooldownMinutes: 30,
			ReturnWindowDays:       14,
			DefaultCustomerID:      501,
		},
		Now: func() time.Time { return now },
	}
}

// invokeTool runs a tool with JSON arguments and decodes the JSON result.
func invokeTool(t *testing.T, bt tool.BaseTool, args any, out any) {
	t.Helper()

	inv, ok := bt.(tool.InvokableTool)
	require.True(t, ok, "tool must be invokable")

	argJSON, err := json.Marshal(args)
	require.NoError(t, err)

	res, err := inv.InvokableRun(context.Background(), string(argJSON))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(res), out))
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
