package repository

import (
	"context"
	"errors"

	"github.com/blinkforge/blinkforge-api/internal/domain/entity"
)

// ErrNotFound is returned when a row does not exist (or no longer exists).
// Callers deleting a project treat it as a benign condition, not a failure.
var ErrNotFound = errors.New("not found")

// ProjectRepository defines the user-scoped persistence operations for
// projects. Every operation is bounded by the owning user id; a project is
// never visible to, or mutable by, any other user.
type ProjectRepository interface {
	// List returns all projects owned by userID, most recent first.
	List(ctx context.Context, userID string) ([]entity.Project, error)

	// Create inserts a new record. It either fully succeeds or fully fails;
	// there are no partial writes.
	Create(ctx context.Context, p *entity.Project) error

	// Delete removes the record. Returns ErrNotFound when the row is already
	// gone so callers can decide it is not fatal.
	Delete(ctx context.Context, userID, projectID string) error

	// MarkStatus transitions a project's status from->to exactly once and
	// stores the app URL. Returns ErrNotFound when the project is missing or
	// the transition already happened.
	MarkStatus(ctx context.Context, projectID string, from, to entity.ProjectStatus, appURL string) error
}
