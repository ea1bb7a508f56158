package cmdutil

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/coach"
	"github.com/mpapenbr/simlap-service-go/pkg/coach/llm"
	"github.com/mpapenbr/simlap-service-go/pkg/config"
)

// AddCoachFlags registers the flags for the remote analyzer
func AddCoachFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&config.EnableRemoteCoach,
		"enable-remote-coach",
		false,
		"use a chat completion endpoint for the analysis (falls back to rules)")
	cmd.Flags().StringVar(&config.CoachEndpoint,
		"coach-endpoint",
		llm.DefaultEndpoint,
		"chat completion endpoint")
	cmd.Flags().StringVar(&config.CoachAPIKey,
		"coach-api-key",
		"",
		"api key for the chat completion endpoint")
	cmd.Flags().StringVar(&config.CoachModel,
		"coach-model",
		llm.DefaultModel,
		"model name for the chat completion endpoint")
	cmd.Flags().StringVar(&config.CoachTimeout,
		"coach-timeout",
		llm.DefaultTimeout.String(),
		"timeout for a single completion request")
}

// NewAnalyzer creates the analyzer configured by the coach flags.
// Without an api key the remote analyzer stays disabled.
func NewAnalyzer() coach.Analyzer {
	timeout, err := time.ParseDuration(config.CoachTimeout)
	if err != nil {
		log.Warn("Invalid coach timeout, using default", log.ErrorField(err))
		timeout = llm.DefaultTimeout
	}
	enable := config.EnableRemoteCoach
	if enable && config.CoachAPIKey == "" {
		log.Warn("remote coach enabled but no api key given, using rules only")
		enable = false
	}
	return coach.New(coach.Config{
		EnableRemote: enable,
		Remote: llm.Config{
			Endpoint: config.CoachEndpoint,
			APIKey:   config.CoachAPIKey,
			Model:    config.CoachModel,
			Timeout:  timeout,
		},
	})
}
