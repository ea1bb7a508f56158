// Package quota decides whether a user may run another analysis this month.
// The rules are an embedded rego policy, the per tier limits are data.
package quota

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/storage"
	"github.com/open-policy-agent/opa/v1/storage/inmem"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

var ErrQuotaExceeded = errors.New("monthly analysis limit reached")

//go:embed policy.rego
var policy []byte

//go:embed data.json
var data []byte

// MonthKey returns the usage bucket for t (YYYY-MM, UTC)
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

type (
	Option func(*Evaluator)

	Evaluator struct {
		query     rego.PreparedEvalQuery
		overrides map[model.SubscriptionTier]int
		l         *log.Logger
	}

	evalRequest struct {
		Tier    model.SubscriptionTier `json:"tier"`
		Current int                    `json:"current"`
	}
)

// WithTierLimit replaces the monthly limit of a tier.
// A negative value makes the tier unlimited.
func WithTierLimit(tier model.SubscriptionTier, limit int) Option {
	return func(e *Evaluator) {
		e.overrides[tier] = limit
	}
}

func NewEvaluator(opts ...Option) (*Evaluator, error) {
	ret := &Evaluator{
		overrides: map[model.SubscriptionTier]int{},
		l:         log.Default().Named("quota"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	store, err := ret.store()
	if err != nil {
		return nil, err
	}
	r := rego.New(
		rego.Query("data.simlap.quota.decision"),
		rego.Module("simlap.quota", string(policy)),
		rego.Store(store),
	)
	if query, err := r.PrepareForEval(context.Background()); err != nil {
		ret.l.Error("failed to prepare query", log.ErrorField(err))
		return nil, err
	} else {
		ret.query = query
	}
	return ret, nil
}

func (e *Evaluator) store() (storage.Store, error) {
	if len(e.overrides) == 0 {
		return inmem.NewFromReader(bytes.NewReader(data)), nil
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	tiers, _ := doc["tiers"].(map[string]any)
	for tier, limit := range e.overrides {
		if limit < 0 {
			tiers[string(tier)] = map[string]any{"unlimited": true}
		} else {
			tiers[string(tier)] = map[string]any{"monthlyAnalyses": limit}
		}
	}
	return inmem.NewFromObject(doc), nil
}

// Check evaluates the policy for a user of the given tier who already ran
// current analyses this month. Unknown tiers are treated as free.
func (e *Evaluator) Check(
	ctx context.Context,
	tier model.SubscriptionTier,
	current int,
) (*model.Usage, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(evalRequest{Tier: tier, Current: current}))
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, fmt.Errorf("quota policy returned no decision for tier %q", tier)
	}
	decision, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected quota decision %v", rs[0].Expressions[0].Value)
	}
	allow, _ := decision["allow"].(bool)
	unlimited, _ := decision["unlimited"].(bool)
	limit, err := toInt(decision["limit"])
	if err != nil {
		return nil, err
	}
	e.l.Debug("quota decision",
		log.String("tier", string(tier)),
		log.Int("current", current),
		log.Any("decision", decision))
	return &model.Usage{
		Current:         current,
		Limit:           model.UsageLimit{Value: limit, Unlimited: unlimited},
		HasReachedLimit: !allow,
	}, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected limit type %T", v)
	}
}
