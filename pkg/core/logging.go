package core

import (
	"log"
	"os"
	"strings"
)

const logPrefix = "sailhook"

// NewLogger returns a stdlib logger prefixed with the component name.
func NewLogger(component string) *log.Logger {
	prefix := logPrefix
	if component != "" {
		prefix += "/" + component
	}
	return log.New(os.Stderr, prefix+" ", log.LstdFlags|log.Lmsgprefix)
}

// WithRequestID derives a logger carrying the request ID in its prefix.
func WithRequestID(base *log.Logger, requestID string) *log.Logger {
	if base == nil {
		base = log.Default()
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return base
	}
	return log.New(base.Writer(), base.Prefix()+"request_id="+requestID+" ", base.Flags())
}
