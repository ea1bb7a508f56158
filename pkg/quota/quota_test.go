package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

func TestCheck(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	free3 := model.UsageLimit{Value: 3}
	unlimited := model.UsageLimit{Unlimited: true}
	tests := []struct {
		name    string
		tier    model.SubscriptionTier
		current int
		want    model.Usage
	}{
		{"free unused", model.TierFree, 0, model.Usage{Current: 0, Limit: free3}},
		{"free below limit", model.TierFree, 2, model.Usage{Current: 2, Limit: free3}},
		{
			"free at limit", model.TierFree, 3,
			model.Usage{Current: 3, Limit: free3, HasReachedLimit: true},
		},
		{
			"free above limit", model.TierFree, 7,
			model.Usage{Current: 7, Limit: free3, HasReachedLimit: true},
		},
		{"pro", model.TierPro, 1000, model.Usage{Current: 1000, Limit: unlimited}},
		{
			"unknown tier is free", model.SubscriptionTier("gold"), 3,
			model.Usage{Current: 3, Limit: free3, HasReachedLimit: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Check(context.Background(), tt.tier, tt.current)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestCheckWithTierLimit(t *testing.T) {
	e, err := NewEvaluator(
		WithTierLimit(model.TierFree, 10),
		WithTierLimit(model.TierPro, -1))
	require.NoError(t, err)

	got, err := e.Check(context.Background(), model.TierFree, 3)
	require.NoError(t, err)
	assert.False(t, got.HasReachedLimit)
	assert.Equal(t, model.UsageLimit{Value: 10}, got.Limit)

	got, err = e.Check(context.Background(), model.TierPro, 50)
	require.NoError(t, err)
	assert.True(t, got.Limit.Unlimited)
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-03", MonthKey(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)))
	cet := time.FixedZone("CET", 3600)
	assert.Equal(t, "2024-03", MonthKey(time.Date(2024, 4, 1, 0, 30, 0, 0, cet)))
}
