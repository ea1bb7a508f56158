package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

type recorder struct {
	events []*model.AnalysisEvent
	err    error
}

func (r *recorder) Publish(_ context.Context, e *model.AnalysisEvent) error {
	r.events = append(r.events, e)
	return r.err
}

func TestMulti(t *testing.T) {
	failing := &recorder{err: errors.New("down")}
	ok := &recorder{}
	p := Multi(failing, ok, Noop)

	err := p.Publish(context.Background(), &model.AnalysisEvent{ID: 1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "down")
	assert.Len(t, ok.events, 1, "failing publisher does not stop others")
	assert.Len(t, failing.events, 1)
}

func TestHub(t *testing.T) {
	h := NewHub()
	defer h.Close()

	sub := h.Subscribe()
	require.NoError(t, h.Publish(context.Background(), &model.AnalysisEvent{ID: 42}))

	select {
	case e := <-sub:
		assert.Equal(t, 42, e.ID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	h.Unsubscribe(sub)
}
