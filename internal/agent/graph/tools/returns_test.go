package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-support-assistant/server/internal/store"
)

func TestDaysSince(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, daysSince(now, now))
	assert.Equal(t, 0, daysSince(now.Add(-23*time.Hour), now))
	assert.Equal(t, 1, daysSince(now.Add(-24*time.Hour), now))
	assert.Equal(t, 14, daysSince(now.AddDate(0, 0, -14), now))
}

func TestReturnEligibilityTool(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("inside the window", func(t *testing.T) {
		fs := &fakeStore{delivered: map[int]*time.Time{
			1003: timePtr(now.AddDate(0, 0, -5)),
		}}
		var out ReturnEligibilityOutput
		invokeTool(t, createReturnEligibilityTool(testDeps(fs, now)), ReturnEligibilityInput{OrderID: 1003}, &out)

		assert.True(t, out.Eligible)
		assert.Equal(t, 5, out.DaysSinceDelivery)
		assert.Equal(t, 14, out.PolicyDays)
	})

	t.Run("exactly at the window boundary is still eligible", func(t *testing.T) {
		fs := &fakeStore{delivered: map[int]*time.Time{
			1003: timePtr(now.AddDate(0, 0, -14)),
		}}
		var out ReturnEligibilityOutput
		invokeTool(t, createReturnEligibilityTool(testDeps(fs, now)), ReturnEligibilityInput{OrderID: 1003}, &out)

		assert.True(t, out.Eligible)
		assert.Equal(t, 14, out.DaysSinceDelivery)
	})

	t.Run("one day past the window", func(t *testing.T) {
		fs := &fakeStore{delivered: map[int]*time.Time{
			1003: timePtr(now.AddDate(0, 0, -15)),
		}}
		var out ReturnEligibilityOutput
		invokeTool(t, createReturnEligibilityTool(testDeps(fs, now)), ReturnEligibilityInput{OrderID: 1003}, &out)

		assert.False(t, out.Eligible)
		assert.Equal(t, 15, out.DaysSinceDelivery)
	})

	t.Run("no delivered event", func(t *testing.T) {
		fs := &fakeStore{delivered: map[int]*time.Time{}}
		var out ReturnEligibilityOutput
		invokeTool(t, createReturnEligibilityTool(testDeps(fs, now)), ReturnEligibilityInput{OrderID: 1002}, &out)

		assert.False(t, out.Eligible)
		assert.Equal(t, "No Delivered event found.", out.Reason)
		assert.Empty(t, out.DeliveredAt)
	})

	t.Run("store failure treated as not delivered", func(t *testing.T) {
		fs := &fakeStore{err: assert.AnError}
		var out ReturnEligibilityOutput
		invokeTool(t, createReturnEligibilityTool(testDeps(fs, now)), ReturnEligibilityInput{OrderID: 1003}, &out)

		assert.False(t, out.Eligible)
		assert.Equal(t, "No Delivered event found.", out.Reason)
	})

	t.Run("policy override", func(t *testing.T) {
		fs := &fakeStore{delivered: map[int]*time.Time{
			1003: timePtr(now.AddDate(0, 0, -20)),
		}}
		var out ReturnEligibilityOutput
		invokeTool(t, createReturnEligibilityTool(testDeps(fs, now)), ReturnEligibilityInput{OrderID: 1003, PolicyDays: 30}, &out)

		assert.True(t, out.Eligible)
		assert.Equal(t, 30, out.PolicyDays)
	})
}

func TestLastReturnStatusTool(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("existing return", func(t *testing.T) {
		fs := &fakeStore{returns: map[int]*store.Return{
			1003: {
				OrderID:      1003,
				Status:       "Pending",
				RequestDate:  time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC),
				ProductTitle: strPtr("Running Shoes"),
			},
		}}
		var out LastReturnStatusOutput
		invokeTool(t, createLastReturnStatusTool(testDeps(fs, now)), LastReturnStatusInput{OrderID: 1003}, &out)

		require.True(t, out.Found)
		assert.Equal(t, "Pending", out.Status)
		assert.Equal(t, "Running Shoes", out.ProductTitle)
		assert.Equal(t, "2025-08-05T00:00:00Z", out.RequestDate)
	})

	t.Run("no return recorded", func(t *testing.T) {
		fs := &fakeStore{returns: map[int]*store.Return{}}
		var out LastReturnStatusOutput
		invokeTool(t, createLastReturnStatusTool(testDeps(fs, now)), LastReturnStatusInput{OrderID: 1001}, &out)

		assert.False(t, out.Found)
		assert.Empty(t, out.Status)
	})
}
