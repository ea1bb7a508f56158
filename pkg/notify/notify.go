// Package notify distributes events about stored analyses.
package notify

import (
	"context"
	"errors"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

type Publisher interface {
	Publish(ctx context.Context, event *model.AnalysisEvent) error
}

type noop struct{}

func (noop) Publish(context.Context, *model.AnalysisEvent) error { return nil }

// Noop discards all events
var Noop Publisher = noop{}

type multi []Publisher

// Multi publishes to all publishers. Errors are joined, a failing publisher
// does not stop the others.
func Multi(publishers ...Publisher) Publisher {
	return multi(publishers)
}

func (m multi) Publish(ctx context.Context, event *model.AnalysisEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
