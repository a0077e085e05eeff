// Package pipeline implements the five-stage rule generation pipeline:
// document analysis, rule extraction, rule classification, rule validation,
// and rule synthesis. The Orchestrator coordinates the stages over a state
// graph and streams progress events; each stage wraps its outcome in a
// uniform Result envelope.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for pipeline operations.
var (
	ErrBadInput      = errors.New("unexpected stage input")
	ErrStageFailed   = errors.New("stage failed")
	ErrMissingRunCtx = errors.New("missing pipeline context in state")
)

// stageError carries a failed stage's identity and error details out of
// graph execution so the orchestrator can emit a faithful terminal event.
type stageError struct {
	name    string
	message string
	details []string
}

func (e *stageError) Error() string {
	if len(e.details) == 0 {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, strings.Join(e.details, "; "))
}

func failureMessage(name string) string {
	text := strings.ReplaceAll(name, "_", " ")
	if text == "" {
		return "Stage failed"
	}
	return strings.ToUpper(text[:1]) + text[1:] + " failed"
}
