package notify

import (
	"context"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/utils/broadcast"
)

// Hub hands events to in-process subscribers, e.g. streaming HTTP clients.
type Hub struct {
	source chan *model.AnalysisEvent
	server broadcast.Server[*model.AnalysisEvent]
}

var _ Publisher = (*Hub)(nil)

func NewHub() *Hub {
	source := make(chan *model.AnalysisEvent, 16)
	return &Hub{
		source: source,
		server: broadcast.New("analysis", source,
			broadcast.WithBufferSize[*model.AnalysisEvent](8)),
	}
}

func (h *Hub) Publish(ctx context.Context, event *model.AnalysisEvent) error {
	select {
	case h.source <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) Subscribe() <-chan *model.AnalysisEvent {
	return h.server.Subscribe()
}

func (h *Hub) Unsubscribe(ch <-chan *model.AnalysisEvent) {
	h.server.CancelSubscription(ch)
}

func (h *Hub) Close() {
	h.server.Close()
}
