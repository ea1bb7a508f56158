package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/notify"
)

const (
	DefaultStream        = "SIMLAP_ANALYSES"
	DefaultSubjectPrefix = "simlap.analysis"
)

type (
	Option func(*config)
	config struct {
		stream        string
		subjectPrefix string
	}

	publisher struct {
		cfg *config
		js  jetstream.JetStream
		log *log.Logger
	}
)

var _ notify.Publisher = (*publisher)(nil)

func WithStream(name string) Option {
	return func(c *config) {
		c.stream = name
	}
}

func WithSubjectPrefix(prefix string) Option {
	return func(c *config) {
		c.subjectPrefix = prefix
	}
}

// New ensures the stream exists and returns a publisher sending each event
// to <prefix>.created.<userID>.
func New(ctx context.Context, nc *nats.Conn, opts ...Option) (notify.Publisher, error) {
	cfg := &config{stream: DefaultStream, subjectPrefix: DefaultSubjectPrefix}
	for _, o := range opts {
		o(cfg)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.stream,
		Subjects: []string{cfg.subjectPrefix + ".>"},
	}); err != nil {
		return nil, err
	}
	ret := &publisher{
		cfg: cfg,
		js:  js,
		log: log.Default().Named("notify.nats"),
	}
	ret.log.Debug("nats publisher ready",
		log.String("stream", cfg.stream),
		log.String("prefix", cfg.subjectPrefix))
	return ret, nil
}

func Subject(prefix string, event *model.AnalysisEvent) string {
	return fmt.Sprintf("%s.created.%d", prefix, event.UserID)
}

func (p *publisher) Publish(ctx context.Context, event *model.AnalysisEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ack, err := p.js.Publish(ctx, Subject(p.cfg.subjectPrefix, event), data)
	if err != nil {
		return err
	}
	p.log.Debug("published", log.Int("id", event.ID), log.Uint64("seq", ack.Sequence))
	return nil
}
