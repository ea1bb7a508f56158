// Package lap runs the analysis workflow: quota check, feature extraction,
// coaching, persistence and event publishing.
package lap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/coach"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/notify"
	"github.com/mpapenbr/simlap-service-go/pkg/quota"
	"github.com/mpapenbr/simlap-service-go/pkg/repository"
	"github.com/mpapenbr/simlap-service-go/pkg/repository/api"
	"github.com/mpapenbr/simlap-service-go/pkg/telemetry"
)

const (
	DefaultSimType   = "unknown"
	DefaultTrackName = "Unknown Track"
	DefaultCarName   = "Unknown Car"
	DemoSimType      = "demo"
)

var ErrNotFound = errors.New("analysis not found")

// QuotaError is returned when the monthly limit is reached. It carries the
// current usage so callers can report it.
type QuotaError struct {
	Usage *model.Usage
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s (%d used)", quota.ErrQuotaExceeded, e.Usage.Current)
}

func (e *QuotaError) Unwrap() error {
	return quota.ErrQuotaExceeded
}

type (
	// Meta is supplied by the uploader, empty values get defaults.
	Meta struct {
		SimType   string
		TrackName string
		CarName   string
	}

	Result struct {
		ID       int                   `json:"id"`
		Metrics  *model.LapMetrics     `json:"telemetryData"`
		Analysis *model.AnalysisResult `json:"analysis"`
		Usage    *model.Usage          `json:"usage"`
	}
)

type Option func(*Service)

func WithRepositories(repos api.Repositories) Option {
	return func(s *Service) {
		s.repos = repos
	}
}

func WithTxManager(txMgr api.TransactionManager) Option {
	return func(s *Service) {
		s.txMgr = txMgr
	}
}

func WithAnalyzer(a coach.Analyzer) Option {
	return func(s *Service) {
		s.analyzer = a
	}
}

func WithExtractor(e *telemetry.Extractor) Option {
	return func(s *Service) {
		s.extractor = e
	}
}

func WithQuota(q *quota.Evaluator) Option {
	return func(s *Service) {
		s.quota = q
	}
}

func WithPublisher(p notify.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

type Service struct {
	repos     api.Repositories
	txMgr     api.TransactionManager
	analyzer  coach.Analyzer
	extractor *telemetry.Extractor
	quota     *quota.Evaluator
	publisher notify.Publisher
	now       func() time.Time
	tracer    trace.Tracer
	analyses  metric.Int64Counter
	l         *log.Logger
}

// NewService requires repositories, a transaction manager and a quota
// evaluator. Analyzer, extractor and publisher have defaults.
func NewService(opts ...Option) (*Service, error) {
	ret := &Service{
		l:         log.Default().Named("service.lap"),
		publisher: notify.Noop,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.repos == nil || ret.txMgr == nil || ret.quota == nil {
		return nil, errors.New("lap service requires repositories, tx manager and quota")
	}
	if ret.analyzer == nil {
		ret.analyzer = coach.NewRuleBased()
	}
	if ret.extractor == nil {
		ret.extractor = telemetry.NewExtractor()
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("simlap")
	}
	var err error
	ret.analyses, err = otel.Meter("simlap").Int64Counter("simlap.analyses",
		metric.WithDescription("number of stored lap analyses"))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Upload analyzes a CSV telemetry file for user.
func (s *Service) Upload(
	ctx context.Context,
	user *model.DbUser,
	r io.Reader,
	meta Meta,
) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "lap.upload")
	defer span.End()

	if _, err := s.checkQuota(ctx, user); err != nil {
		return nil, recordErr(span, err)
	}
	if meta.SimType == "" {
		meta.SimType = DefaultSimType
	}
	records, err := telemetry.DecodeCSV(r)
	if err != nil {
		return nil, recordErr(span, err)
	}
	_, extractSpan := s.tracer.Start(ctx, "lap.extract")
	metrics, err := s.extractor.Extract(records, meta.SimType)
	extractSpan.End()
	if err != nil {
		return nil, recordErr(span, err)
	}
	metrics.TrackName = withDefault(meta.TrackName, DefaultTrackName)
	metrics.CarName = withDefault(meta.CarName, DefaultCarName)

	res, err := s.analyzeAndStore(ctx, user, metrics.SimType, metrics)
	return res, recordErr(span, err)
}

// Demo analyzes a generated lap for user. It counts against the quota like
// an upload.
func (s *Service) Demo(
	ctx context.Context,
	user *model.DbUser,
	trackName, carName string,
) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "lap.demo")
	defer span.End()

	if _, err := s.checkQuota(ctx, user); err != nil {
		return nil, recordErr(span, err)
	}
	metrics := telemetry.GenerateDemo(trackName, carName)
	res, err := s.analyzeAndStore(ctx, user, DemoSimType, metrics)
	return res, recordErr(span, err)
}

func (s *Service) History(
	ctx context.Context,
	userID, limit int,
) ([]*model.LapAnalysisHeader, error) {
	return s.repos.LapAnalysis().LoadHistory(ctx, userID, limit)
}

// Get returns ErrNotFound if the analysis does not exist or belongs to
// another user.
func (s *Service) Get(ctx context.Context, userID, id int) (*model.DbLapAnalysis, error) {
	ret, err := s.repos.LapAnalysis().LoadByID(ctx, id, userID)
	if errors.Is(repository.NoData(err), repository.ErrNoData) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return ret, err
}

// Compare compares two stored analyses of the same user sector by sector.
// The comparison is based on the stored preview samples.
func (s *Service) Compare(
	ctx context.Context,
	userID, id, referenceID int,
) (*model.SectorComparison, error) {
	ctx, span := s.tracer.Start(ctx, "lap.compare",
		trace.WithAttributes(attribute.Int("id", id), attribute.Int("referenceId", referenceID)))
	defer span.End()

	lap, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, recordErr(span, err)
	}
	ref, err := s.Get(ctx, userID, referenceID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	ret, err := coach.Compare(&lap.Metrics, &ref.Metrics)
	return ret, recordErr(span, err)
}

// Usage returns the usage of the current month.
func (s *Service) Usage(ctx context.Context, user *model.DbUser) (*model.Usage, error) {
	current, err := s.repos.Usage().Load(ctx, user.ID, quota.MonthKey(s.now()))
	if err != nil {
		return nil, err
	}
	return s.quota.Check(ctx, user.SubscriptionTier, current.AnalysesCount)
}

func (s *Service) Stats(ctx context.Context, userID int) (*model.UserStats, error) {
	return s.repos.LapAnalysis().LoadStats(ctx, userID)
}

func (s *Service) checkQuota(ctx context.Context, user *model.DbUser) (*model.Usage, error) {
	usage, err := s.Usage(ctx, user)
	if err != nil {
		return nil, err
	}
	if usage.HasReachedLimit {
		s.l.Info("usage limit reached",
			log.Int("user", user.ID),
			log.Int("current", usage.Current))
		return nil, &QuotaError{Usage: usage}
	}
	return usage, nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *Service) analyzeAndStore(
	ctx context.Context,
	user *model.DbUser,
	simType string,
	metrics *model.LapMetrics,
) (*Result, error) {
	analyzeCtx, analyzeSpan := s.tracer.Start(ctx, "lap.analyze")
	analysis, err := s.analyzer.Analyze(analyzeCtx, metrics)
	analyzeSpan.End()
	if err != nil {
		return nil, err
	}

	item := &model.DbLapAnalysis{
		UserID:    user.ID,
		SimType:   simType,
		TrackName: metrics.TrackName,
		CarName:   metrics.CarName,
		LapTime:   metrics.LapTime,
		Metrics:   *metrics,
		Analysis:  *analysis,
		CreatedAt: s.now(),
	}
	var usage *model.DbUsage
	err = s.txMgr.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		if item.ID, txErr = s.repos.LapAnalysis().Create(ctx, item); txErr != nil {
			return txErr
		}
		usage, txErr = s.repos.Usage().Increment(ctx, user.ID, quota.MonthKey(item.CreatedAt))
		return txErr
	})
	if err != nil {
		s.l.Error("could not store analysis", log.ErrorField(err))
		return nil, err
	}
	s.analyses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("analysisType", string(analysis.AnalysisType)),
		attribute.String("simType", simType)))
	s.l.Debug("analysis stored",
		log.Int("id", item.ID),
		log.Int("user", user.ID),
		log.String("track", item.TrackName),
		log.Float64("lapTime", item.LapTime))

	if err := s.publisher.Publish(ctx, &model.AnalysisEvent{
		ID:                   item.ID,
		UserID:               user.ID,
		SimType:              simType,
		TrackName:            item.TrackName,
		CarName:              item.CarName,
		LapTime:              item.LapTime,
		AnalysisType:         analysis.AnalysisType,
		EstimatedImprovement: analysis.EstimatedImprovement,
		CreatedAt:            item.CreatedAt,
	}); err != nil {
		s.l.Warn("could not publish analysis event", log.ErrorField(err))
	}

	current, err := s.quota.Check(ctx, user.SubscriptionTier, usage.AnalysesCount)
	if err != nil {
		return nil, err
	}
	return &Result{ID: item.ID, Metrics: metrics, Analysis: analysis, Usage: current}, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func recordErr(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
