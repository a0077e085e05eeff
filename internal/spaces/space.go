// Package spaces implements the policy space domain. A policy space
// groups the documents and generated rules for one regulatory context,
// such as a jurisdiction or a business line.
package spaces

import "time"

// PolicySpace represents a named container for documents and rules.
// Identifiers are caller-visible strings so external systems can supply
// their own; a UUID is generated when none is provided.
type PolicySpace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to create a policy space.
type CreateCommand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
}

// UpdateCommand carries the mutable fields of a policy space.
type UpdateCommand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
