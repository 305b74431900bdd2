package ui

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/blinkforge/blinkforge-api/internal/domain/entity"
	"github.com/blinkforge/blinkforge-api/internal/domain/repository"
)

// Phase is the dashboard's load state.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseError   Phase = "error"
)

// ErrDeleteInFlight is returned when a delete is requested for a row that
// already has one pending.
var ErrDeleteInFlight = errors.New("delete already in flight for this project")

// Stats are derived aggregates over a project list. They are recomputed from
// the list every time, never stored, so they can be stale relative to the
// backend but never inconsistent with the list they were derived from.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Creating  int `json:"creating"`
	Failed    int `json:"failed"`
}

// DeriveStats computes dashboard stats from a project list.
func DeriveStats(items []entity.Project) Stats {
	st := Stats{Total: len(items)}
	for _, p := range items {
		switch p.Status {
		case entity.StatusCompleted:
			st.Completed++
		case entity.StatusCreating:
			st.Creating++
		case entity.StatusFailed:
			st.Failed++
		}
	}
	return st
}

// Dashboard holds one user's project list view. The list is mutated only
// here: a reload replaces it wholesale, a successful delete removes a single
// row locally. Nothing else touches it.
type Dashboard struct {
	repo   repository.ProjectRepository
	logger *logrus.Logger
	userID string

	mu       sync.Mutex
	phase    Phase
	gen      uint64
	items    []entity.Project
	deleting map[string]bool
}

func NewDashboard(repo repository.ProjectRepository, logger *logrus.Logger, userID string) *Dashboard {
	return &Dashboard{
		repo:     repo,
		logger:   logger,
		userID:   userID,
		phase:    PhaseLoading,
		deleting: make(map[string]bool),
	}
}

// Load issues one list call scoped to the owning user and replaces the held
// list with the result. Each Load bumps a generation counter; a result that
// comes back after a newer Load started is discarded, so a slow stale read
// can never overwrite fresher data. On failure the dashboard shows the empty
// set, never a partial list.
func (d *Dashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	d.phase = PhaseLoading
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	items, err := d.repo.List(ctx, d.userID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		// A newer Load owns the state now.
		return nil
	}
	if err != nil {
		d.logger.WithError(err).WithField("user_id", d.userID).Error("dashboard list failed")
		d.phase = PhaseError
		d.items = nil
		return err
	}
	d.phase = PhaseLoaded
	d.items = items
	return nil
}

// Delete removes one project. At most one delete may be in flight per row;
// deletes on different rows proceed independently. On success the row is
// removed from the held list without a reload (the successful delete already
// validated the removal). On failure the row stays and its marker clears. A
// row that is already gone from the store counts as success.
func (d *Dashboard) Delete(ctx context.Context, projectID string) error {
	d.mu.Lock()
	if d.deleting[projectID] {
		d.mu.Unlock()
		return ErrDeleteInFlight
	}
	d.deleting[projectID] = true
	d.mu.Unlock()

	err := d.repo.Delete(ctx, d.userID, projectID)

	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.deleting, projectID)

	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		d.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":    d.userID,
			"project_id": projectID,
		}).Error("dashboard delete failed")
		return err
	}

	kept := d.items[:0]
	for _, p := range d.items {
		if p.ID != projectID {
			kept = append(kept, p)
		}
	}
	d.items = kept
	return nil
}

// Snapshot is a point-in-time copy of the dashboard state for rendering.
// Stats are absent when there are no projects; the empty state renders a
// call to action instead.
type Snapshot struct {
	Phase    Phase            `json:"phase"`
	Projects []entity.Project `json:"projects"`
	Deleting []string         `json:"deleting"`
	Stats    *Stats           `json:"stats,omitempty"`
	Empty    bool             `json:"empty"`
}

// Snapshot copies the current state. Stats are derived from the same list
// that is returned, so the two can never disagree.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	items := make([]entity.Project, len(d.items))
	copy(items, d.items)

	deleting := make([]string, 0, len(d.deleting))
	for id := range d.deleting {
		deleting = append(deleting, id)
	}

	snap := Snapshot{
		Phase:    d.phase,
		Projects: items,
		Deleting: deleting,
		Empty:    d.phase != PhaseLoading && len(items) == 0,
	}
	if len(items) > 0 {
		st := DeriveStats(items)
		snap.Stats = &st
	}
	return snap
}

// Deleting reports whether a delete is pending for the given row.
func (d *Dashboard) Deleting(projectID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleting[projectID]
}
