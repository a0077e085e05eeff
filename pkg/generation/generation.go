// Package generation defines the boundary to the text generation service.
// Pipeline stages depend on the Client interface only; the concrete agent
// implementation lives alongside it so composition code can wire either a
// real model or a test double.
package generation

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for generation operations.
var (
	ErrNotConfigured = errors.New("generation client not configured")
	ErrEmptyResponse = errors.New("empty generation response")
)

// Client produces a completion for a prompt. The system instruction scopes
// model behavior for the call; an empty system string sends the prompt as-is.
type Client interface {
	Generate(ctx context.Context, prompt string, system string) (string, error)
}

// Chunk is one piece of a streamed generation response. A non-nil Err
// terminates the stream; Text is empty in that case.
type Chunk struct {
	Text string
	Err  error
}

// Streamer is an optional capability of a Client. The chunk channel is
// closed after the final chunk; concatenating the Text of every chunk
// yields the same content a Generate call would return.
type Streamer interface {
	GenerateStream(ctx context.Context, prompt string, system string) (<-chan Chunk, error)
}

// Collect drains a stream into a single response string. It returns the
// first chunk error encountered, or ctx.Err() if the context ends before
// the stream does.
func Collect(ctx context.Context, s Streamer, prompt string, system string) (string, error) {
	chunks, err := s.GenerateStream(ctx, prompt, system)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return sb.String(), nil
			}
			if chunk.Err != nil {
				return "", chunk.Err
			}
			sb.WriteString(chunk.Text)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}
