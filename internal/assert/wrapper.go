package assert

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/wfm/internal/config"
	"github.com/kode4food/wfm/pkg/api"
)

// Wrapper wraps testify assertions with workflow-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
}

// New creates a new test assertion wrapper
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
	}
}

// ConfigValid asserts that a configuration passes validation
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
}

// ConfigInvalid asserts that a configuration fails validation with an error
// containing the expected text
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if err != nil && contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// Review asserts the numeric form of a status review
func (w *Wrapper) Review(
	review *api.StatusReview, nextStepIndex int, complete bool,
) {
	w.Helper()
	if w.NotNil(review) {
		w.Equal(nextStepIndex, review.NextStepIndex, "next step index")
		w.Equal(complete, review.Complete, "complete")
	}
}

// WorkorderStatus asserts the derived status of a workorder
func (w *Wrapper) WorkorderStatus(
	res *api.WorkorderStatusResponse, expected api.Status,
) {
	w.Helper()
	if w.NotNil(res) {
		w.Equal(expected, res.Status)
	}
}
