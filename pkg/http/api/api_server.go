// Package api provides the JSON HTTP API for lap analyses.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/coach"
	"github.com/mpapenbr/simlap-service-go/pkg/config"
	"github.com/mpapenbr/simlap-service-go/pkg/http/auth"
	"github.com/mpapenbr/simlap-service-go/pkg/http/respond"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/notify"
	"github.com/mpapenbr/simlap-service-go/pkg/service/lap"
	"github.com/mpapenbr/simlap-service-go/pkg/telemetry"
	"github.com/mpapenbr/simlap-service-go/version"
)

const (
	uploadField     = "telemetry"
	formOverhead    = 1 << 20
	limitReachedMsg = "You have reached your monthly analysis limit. " +
		"Please upgrade to Pro for unlimited analyses."
)

var (
	allowedExtensions = []string{".csv", ".txt"}
	errBadRequest     = errors.New("bad request")
)

// LapService is implemented by lap.Service
//
//nolint:lll // readability
type LapService interface {
	Upload(ctx context.Context, user *model.DbUser, r io.Reader, meta lap.Meta) (*lap.Result, error)
	Demo(ctx context.Context, user *model.DbUser, trackName, carName string) (*lap.Result, error)
	History(ctx context.Context, userID, limit int) ([]*model.LapAnalysisHeader, error)
	Get(ctx context.Context, userID, id int) (*model.DbLapAnalysis, error)
	Compare(ctx context.Context, userID, id, referenceID int) (*model.SectorComparison, error)
	Usage(ctx context.Context, user *model.DbUser) (*model.Usage, error)
	Stats(ctx context.Context, userID int) (*model.UserStats, error)
}

var _ LapService = (*lap.Service)(nil)

type Option func(*Server)

func WithLapService(svc LapService) Option {
	return func(s *Server) {
		s.svc = svc
	}
}

// WithAuth sets the middleware guarding all routes but health
func WithAuth(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.auth = mw
	}
}

// WithHub enables the event stream endpoint
func WithHub(hub *notify.Hub) Option {
	return func(s *Server) {
		s.hub = hub
	}
}

func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

func WithHeartbeat(d time.Duration) Option {
	return func(s *Server) {
		s.heartbeat = d
	}
}

type Server struct {
	svc       LapService
	auth      func(http.Handler) http.Handler
	hub       *notify.Hub
	maxUpload int64
	heartbeat time.Duration
	l         *log.Logger
}

func NewServer(opts ...Option) *Server {
	ret := &Server{
		maxUpload: config.DefaultMaxUploadSize,
		heartbeat: 30 * time.Second,
		l:         log.Default().Named("http.api"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.auth == nil {
		ret.auth = func(h http.Handler) http.Handler { return h }
	}
	return ret
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.health).Methods(http.MethodGet)

	// history must be registered before the {id} route
	protected := []struct {
		method, path string
		h            http.HandlerFunc
	}{
		{http.MethodPost, "/api/analyze/upload", s.upload},
		{http.MethodPost, "/api/analyze/demo", s.demo},
		{http.MethodGet, "/api/analyze/history", s.history},
		{http.MethodPost, "/api/analyze/compare", s.compare},
		{http.MethodGet, "/api/analyze/{id}", s.get},
		{http.MethodGet, "/api/usage", s.usage},
		{http.MethodGet, "/api/stats", s.stats},
	}
	for _, p := range protected {
		r.Handle(p.path, s.auth(p.h)).Methods(p.method)
	}
	if s.hub != nil {
		r.Handle("/api/events", s.auth(http.HandlerFunc(s.events))).Methods(http.MethodGet)
	}
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   version.Version,
	})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+formOverhead)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, fmt.Errorf("%w: file exceeds %d bytes", errBadRequest, s.maxUpload))
			return
		}
		s.writeError(w, fmt.Errorf("%w: no file uploaded", errBadRequest))
		return
	}
	//nolint:errcheck // multipart file
	defer file.Close()
	if err := s.checkUpload(header); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.svc.Upload(r.Context(), auth.FromContext(r.Context()), file, lap.Meta{
		SimType:   r.FormValue("simType"),
		TrackName: r.FormValue("trackName"),
		CarName:   r.FormValue("carName"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (s *Server) checkUpload(header *multipart.FileHeader) error {
	if header.Size > s.maxUpload {
		return fmt.Errorf("%w: file exceeds %d bytes", errBadRequest, s.maxUpload)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	if header.Header.Get("Content-Type") == "text/csv" {
		return nil
	}
	return fmt.Errorf("%w: invalid file type, please upload a CSV file", errBadRequest)
}

type demoRequest struct {
	TrackName string `json:"trackName"`
	CarName   string `json:"carName"`
}

func (s *Server) demo(w http.ResponseWriter, r *http.Request) {
	var req demoRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.svc.Demo(r.Context(), auth.FromContext(r.Context()), req.TrackName, req.CarName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// history ignores invalid limits and uses the default instead
func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	res, err := s.svc.History(r.Context(), auth.FromContext(r.Context()).ID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	rawID := mux.Vars(r)["id"]
	id, err := strconv.Atoi(rawID)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid id %q", errBadRequest, rawID))
		return
	}
	res, err := s.svc.Get(r.Context(), auth.FromContext(r.Context()).ID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

type compareRequest struct {
	AnalysisID  int `json:"analysisId"`
	ReferenceID int `json:"referenceId"`
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.AnalysisID <= 0 || req.ReferenceID <= 0 {
		s.writeError(w, fmt.Errorf("%w: analysisId and referenceId are required", errBadRequest))
		return
	}
	res, err := s.svc.Compare(r.Context(), auth.FromContext(r.Context()).ID,
		req.AnalysisID, req.ReferenceID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (s *Server) usage(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Usage(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Stats(r.Context(), auth.FromContext(r.Context()).ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func decodeOptionalBody(r *http.Request, target any) error {
	err := json.NewDecoder(r.Body).Decode(target)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: invalid json: %w", errBadRequest, err)
}

//nolint:cyclop // flat error mapping
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var quotaErr *lap.QuotaError
	var parseErr *telemetry.ParseError
	switch {
	case errors.As(err, &quotaErr):
		respond.Error(w, http.StatusForbidden, respond.ErrorBody{
			Error:   "Usage limit reached",
			Message: limitReachedMsg,
			Usage:   quotaErr.Usage,
		})
	case errors.Is(err, lap.ErrNotFound):
		respond.Error(w, http.StatusNotFound, respond.ErrorBody{
			Error: "Analysis not found",
		})
	case errors.As(err, &parseErr),
		errors.Is(err, telemetry.ErrEmptyInput),
		errors.Is(err, coach.ErrDegenerateInput),
		errors.Is(err, errBadRequest):
		respond.Error(w, http.StatusBadRequest, respond.ErrorBody{
			Error:   "Bad request",
			Message: err.Error(),
		})
	default:
		s.l.Error("request failed", log.ErrorField(err))
		respond.Error(w, http.StatusInternalServerError, respond.ErrorBody{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}
