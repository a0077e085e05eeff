package pipeline

import "fmt"

// Result is the uniform envelope every stage returns. Success with
// populated Data, or failure with Data nil and at least one error string.
// Metadata and Errors are always non-nil so consumers can range freely.
type Result struct {
	Success  bool           `json:"success"`
	Data     any            `json:"data"`
	Metadata map[string]any `json:"metadata"`
	Errors   []string       `json:"errors"`
}

// Succeed builds a successful Result. A nil metadata map is replaced
// with an empty one.
func Succeed(data any, metadata map[string]any) Result {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Result{
		Success:  true,
		Data:     data,
		Metadata: metadata,
		Errors:   []string{},
	}
}

// Fail builds a failed Result from one or more error messages.
func Fail(messages ...string) Result {
	if len(messages) == 0 {
		messages = []string{"stage failed"}
	}
	return Result{
		Success:  false,
		Data:     nil,
		Metadata: map[string]any{},
		Errors:   messages,
	}
}

// Failf builds a failed Result wrapping a single error.
func Failf(format string, args ...any) Result {
	return Fail(fmt.Sprintf(format, args...))
}
