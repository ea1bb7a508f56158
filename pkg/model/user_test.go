package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageLimitJSON(t *testing.T) {
	tests := []struct {
		name  string
		limit UsageLimit
		want  string
	}{
		{"limited", UsageLimit{Value: 3}, `3`},
		{"unlimited", UsageLimit{Unlimited: true}, `"unlimited"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.limit)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var got UsageLimit
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.limit, got)
		})
	}
	var got UsageLimit
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &got))
}

func TestUsageJSON(t *testing.T) {
	data, err := json.Marshal(Usage{Current: 3, Limit: UsageLimit{Value: 3}, HasReachedLimit: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"current":3,"limit":3,"hasReachedLimit":true}`, string(data))
}
