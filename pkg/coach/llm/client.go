// Package llm asks an OpenAI compatible chat completion endpoint for
// coaching advice.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

const (
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultModel    = "gpt-3.5-turbo"
	DefaultTimeout  = 30 * time.Second

	systemPrompt = "You are an expert sim racing coach analyzing telemetry data. " +
		"Provide specific, actionable advice to help drivers improve their lap times."
	maxTokens          = 500
	temperature        = 0.7
	maxRecommendations = 5
)

var (
	ErrNoContent = errors.New("no content in completion")
	contentPath  = jp.MustParseString("$.choices[0].message.content")
)

// Fallback is used whenever the remote call does not yield a usable answer.
type Fallback interface {
	Analyze(ctx context.Context, metrics *model.LapMetrics) (*model.AnalysisResult, error)
}

type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

type (
	Option func(*Analyzer)

	Analyzer struct {
		cfg      Config
		client   *http.Client
		fallback Fallback
		l        *log.Logger
	}
)

func WithHTTPClient(c *http.Client) Option {
	return func(a *Analyzer) {
		a.client = c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Analyzer) {
		a.l = l
	}
}

func New(cfg Config, fallback Fallback, opts ...Option) *Analyzer {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	ret := &Analyzer{
		cfg:      cfg,
		fallback: fallback,
		l:        log.Default().Named("coach.llm"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.client == nil {
		ret.client = &http.Client{Timeout: cfg.Timeout}
	}
	return ret
}

// Analyze returns the remote result or, on any failure, the result of the
// fallback analyzer.
func (a *Analyzer) Analyze(
	ctx context.Context,
	metrics *model.LapMetrics,
) (*model.AnalysisResult, error) {
	content, err := a.complete(ctx, BuildPrompt(metrics))
	if err != nil {
		a.l.Warn("remote analysis failed, using fallback", log.ErrorField(err))
		return a.fallback.Analyze(ctx, metrics)
	}
	return &model.AnalysisResult{
		Insights:        content,
		Recommendations: ExtractRecommendations(content),
		AnalysisType:    model.AnalysisTypeAI,
	}, nil
}

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	chatRequest struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		MaxTokens   int           `json:"max_tokens"`
		Temperature float64       `json:"temperature"`
	}
)

func (a *Analyzer) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: a.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint,
		bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	//nolint:errcheck // body close
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("completion returned %d: %s", resp.StatusCode, body)
	}
	return extractContent(body)
}

func extractContent(body []byte) (string, error) {
	data, err := oj.Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	content, ok := contentPath.First(data).(string)
	if !ok || strings.TrimSpace(content) == "" {
		return "", ErrNoContent
	}
	return content, nil
}

// ExtractRecommendations picks lines mentioning improvement, focus or
// work on. At most 5 are returned.
func ExtractRecommendations(content string) []model.Recommendation {
	lines := lo.Filter(strings.Split(content, "\n"), func(line string, _ int) bool {
		return strings.Contains(line, "improvement") ||
			strings.Contains(line, "focus") ||
			strings.Contains(line, "work on")
	})
	if len(lines) > maxRecommendations {
		lines = lines[:maxRecommendations]
	}
	return lo.Map(lines, func(line string, _ int) model.Recommendation {
		return model.Recommendation{
			Priority:    model.PriorityMedium,
			Category:    model.CategoryGeneral,
			Title:       "AI Recommendation",
			Description: strings.TrimSpace(line),
		}
	})
}
