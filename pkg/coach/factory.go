package coach

import (
	"github.com/mpapenbr/simlap-service-go/log"
	"github.com/mpapenbr/simlap-service-go/pkg/coach/llm"
)

type Config struct {
	EnableRemote bool
	Remote       llm.Config
}

// New returns the rule based analyzer unless the remote analyzer is enabled.
// The remote analyzer falls back to the rule based one.
func New(cfg Config) Analyzer {
	rules := NewRuleBased()
	if !cfg.EnableRemote {
		return rules
	}
	log.Default().Named("coach").Info("remote analysis enabled",
		log.String("endpoint", cfg.Remote.Endpoint),
		log.String("model", cfg.Remote.Model))
	return llm.New(cfg.Remote, rules)
}
