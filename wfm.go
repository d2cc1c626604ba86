package wfm

const (
	// Name is the service name reported in logs
	Name = "wfm"

	// Version is the current service version
	Version = "0.1.0"
)
