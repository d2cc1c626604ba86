package api

import "strings"

type (
	// Namespace scopes a topic to one kind of record
	Namespace string

	// Operation names the action requested on a namespace
	Operation string

	// Topic is a named channel on the mediator bus
	Topic struct {
		Namespace Namespace
		Operation Operation
	}
)

// TopicPrefix is prepended to every request topic
const TopicPrefix = "wfm"

const (
	NamespaceWorkflows  Namespace = "workflows"
	NamespaceWorkorders Namespace = "workorders"
	NamespaceResults    Namespace = "results"
	NamespaceUsers      Namespace = "users"
)

const (
	OpList        Operation = "list"
	OpCreate      Operation = "create"
	OpRead        Operation = "read"
	OpUpdate      Operation = "update"
	OpRemove      Operation = "remove"
	OpReadProfile Operation = "read_profile"
)

const (
	donePrefix  = "done"
	errorPrefix = "error"
	topicSep    = ":"
)

var (
	TopicListWorkflows  = Topic{NamespaceWorkflows, OpList}
	TopicCreateWorkflow = Topic{NamespaceWorkflows, OpCreate}
	TopicReadWorkflow   = Topic{NamespaceWorkflows, OpRead}
	TopicUpdateWorkflow = Topic{NamespaceWorkflows, OpUpdate}
	TopicRemoveWorkflow = Topic{NamespaceWorkflows, OpRemove}

	TopicListWorkorders  = Topic{NamespaceWorkorders, OpList}
	TopicCreateWorkorder = Topic{NamespaceWorkorders, OpCreate}
	TopicReadWorkorder   = Topic{NamespaceWorkorders, OpRead}
	TopicUpdateWorkorder = Topic{NamespaceWorkorders, OpUpdate}

	TopicListResults  = Topic{NamespaceResults, OpList}
	TopicCreateResult = Topic{NamespaceResults, OpCreate}
	TopicReadResult   = Topic{NamespaceResults, OpRead}
	TopicUpdateResult = Topic{NamespaceResults, OpUpdate}

	TopicReadProfile = Topic{NamespaceUsers, OpReadProfile}
)

// String renders the request channel name, e.g. "wfm:workflows:list"
func (t Topic) String() string {
	return join(TopicPrefix, string(t.Namespace), string(t.Operation))
}

// Done renders the channel on which a successful reply to the request with
// the given correlation ID is published
func (t Topic) Done(id string) string {
	return join(donePrefix, t.String(), id)
}

// Error renders the channel on which a failed reply to the request with the
// given correlation ID is published
func (t Topic) Error(id string) string {
	return join(errorPrefix, t.String(), id)
}

// ParseTopic parses a request channel name produced by Topic.String
func ParseTopic(s string) (Topic, bool) {
	parts := strings.Split(s, topicSep)
	if len(parts) != 3 || parts[0] != TopicPrefix {
		return Topic{}, false
	}
	if parts[1] == "" || parts[2] == "" {
		return Topic{}, false
	}
	return Topic{
		Namespace: Namespace(parts[1]),
		Operation: Operation(parts[2]),
	}, true
}

func join(parts ...string) string {
	return strings.Join(parts, topicSep)
}
