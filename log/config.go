package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
	"moul.io/zapfilter"
)

// WithFilterRules restricts log output by logger name and level.
// Example: "info:* debug:coach.*" logs everything at info and the coach
// loggers at debug.
func WithFilterRules(rules string) (Option, error) {
	filter, err := zapfilter.ParseRules(rules)
	if err != nil {
		return nil, fmt.Errorf("invalid log filter %q: %w", rules, err)
	}
	return zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapfilter.NewFilteringCore(c, filter)
	}), nil
}

// FromConfigFile builds a logger from a zap configuration stored as yaml.
func FromConfigFile(path string, opts ...Option) (*Logger, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("invalid log config %s: %w", path, err)
	}
	l, err := cfg.Build(opts...)
	if err != nil {
		return nil, err
	}
	return &Logger{l: l}, nil
}
