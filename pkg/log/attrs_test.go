package log_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/log"
)

type errStub string

func TestWorkflowID(t *testing.T) {
	attr := log.WorkflowID(api.WorkflowID("wf-123"))
	assertAttrEqual(t, attr, "workflow_id", "wf-123")
}

func TestWorkorderID(t *testing.T) {
	attr := log.WorkorderID(api.WorkorderID("wo-abc"))
	assertAttrEqual(t, attr, "workorder_id", "wo-abc")
}

func TestResultID(t *testing.T) {
	attr := log.ResultID(api.ResultID("res-1"))
	assertAttrEqual(t, attr, "result_id", "res-1")
}

func TestCorrelationID(t *testing.T) {
	attr := log.CorrelationID("corr")
	assertAttrEqual(t, attr, "correlation_id", "corr")
}

func TestTopic(t *testing.T) {
	attr := log.Topic(api.TopicListResults)
	assertAttrEqual(t, attr, "topic", "wfm:results:list")
}

func TestStatus(t *testing.T) {
	attr := log.Status(api.StatusPending)
	assertAttrEqual(t, attr, "status", "In Progress")
}

func TestError(t *testing.T) {
	attr := log.Error(nil)
	assertAttrEqual(t, attr, "error", "")

	attr = log.Error(errStub("boom"))
	assertAttrEqual(t, attr, "error", "boom")
}

func TestErrorString(t *testing.T) {
	attr := log.ErrorString("badness")
	assertAttrEqual(t, attr, "error", "badness")
}

func (e errStub) Error() string { return string(e) }

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
