package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type SubscriptionTier string

const (
	TierFree SubscriptionTier = "free"
	TierPro  SubscriptionTier = "pro"
)

type DbUser struct {
	ID               int              `json:"id"`
	Name             string           `json:"name"`
	APIToken         string           `json:"-"`
	SubscriptionTier SubscriptionTier `json:"subscriptionTier"`
	CreatedAt        time.Time        `json:"createdAt"`
}

type DbUsage struct {
	UserID        int    `json:"userId"`
	Month         string `json:"month"` // format: YYYY-MM
	AnalysesCount int    `json:"analysesCount"`
}

// UsageLimit is the monthly analysis limit of a tier.
// It is rendered as number or as "unlimited".
type UsageLimit struct {
	Value     int
	Unlimited bool
}

const unlimitedLiteral = "unlimited"

func (u UsageLimit) MarshalJSON() ([]byte, error) {
	if u.Unlimited {
		return json.Marshal(unlimitedLiteral)
	}
	return json.Marshal(u.Value)
}

func (u *UsageLimit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != unlimitedLiteral {
			return fmt.Errorf("invalid usage limit %q", s)
		}
		*u = UsageLimit{Unlimited: true}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*u = UsageLimit{Value: v}
	return nil
}

type Usage struct {
	Current         int        `json:"current"`
	Limit           UsageLimit `json:"limit"`
	HasReachedLimit bool       `json:"hasReachedLimit"`
}
