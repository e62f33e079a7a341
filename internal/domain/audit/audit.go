// Package audit defines the audit trail contract and helpers for
// stamping created_by/updated_by on documents.
package audit

import (
	"context"

	"apotheca/internal/core/id"
)

// Action identifies what happened to an entity.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionMarkPaid Action = "mark_paid"
)

// Logger records audit entries. Implemented by the postgres audit store;
// entries written inside a transaction commit or roll back with it.
type Logger interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// NopLogger discards all entries. Used in tests.
type NopLogger struct{}

func (NopLogger) LogChange(context.Context, string, id.ID, Action, map[string]any) error {
	return nil
}
