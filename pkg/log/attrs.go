package log

import (
	"fmt"
	"log/slog"
)

func WorkflowID[T ~string](id T) slog.Attr {
	return slog.String("workflow_id", string(id))
}

func WorkorderID[T ~string](id T) slog.Attr {
	return slog.String("workorder_id", string(id))
}

func ResultID[T ~string](id T) slog.Attr {
	return slog.String("result_id", string(id))
}

func CorrelationID(id string) slog.Attr {
	return slog.String("correlation_id", id)
}

func Topic(topic fmt.Stringer) slog.Attr {
	return slog.String("topic", topic.String())
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
