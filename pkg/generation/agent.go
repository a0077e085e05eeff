package generation

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Agent is a Client backed by a go-agents chat agent. A fresh agent is
// created per call from the stored config, matching the per-inference
// lifecycle the providers expect.
type Agent struct {
	cfg gaconfig.AgentConfig
}

// NewAgent creates an Agent from a finalized agent configuration.
func NewAgent(cfg gaconfig.AgentConfig) *Agent {
	return &Agent{cfg: cfg}
}

func (c *Agent) Generate(ctx context.Context, prompt string, system string) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, composePrompt(prompt, system))
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	content := resp.Content()
	if content == "" {
		return "", ErrEmptyResponse
	}

	return content, nil
}

// composePrompt folds the system instruction into the prompt text for
// providers that take a single content string.
func composePrompt(prompt string, system string) string {
	if system == "" {
		return prompt
	}
	return fmt.Sprintf("System: %s\n\nUser: %s", system, prompt)
}
