package coach

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/simlap-service-go/pkg/coach/llm"
)

func TestNew(t *testing.T) {
	assert.IsType(t, &RuleBased{}, New(Config{}))
	assert.IsType(t, &llm.Analyzer{}, New(Config{
		EnableRemote: true,
		Remote:       llm.Config{APIKey: "key"},
	}))
}
