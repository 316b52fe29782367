// Package tasks implements the task repository: every mutation is a full
// load, mutate, save cycle against the backing store.
package tasks

import (
	"context"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"todo-api/domain"
)

// Store abstracts persistence of the full task collection.
type Store interface {
	Load(ctx context.Context) ([]domain.Task, error)
	Save(ctx context.Context, tasks []domain.Task) error
}

// Update carries the optional fields of an edit. Nil fields are left
// unchanged.
type Update struct {
	Title    *string
	Priority *domain.Priority
	Category *string
}

// Repository owns the task collection. It is safe for concurrent use;
// mutations are serialized so two requests never interleave their
// load/save cycles.
type Repository struct {
	mu     sync.Mutex
	store  Store
	logger *log.Logger
}

// New creates a Repository over the given store.
func New(store Store, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Repository{store: store, logger: logger}
}

// List returns the full ordered task collection.
func (r *Repository) List(ctx context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Load(ctx)
}

// Get returns the task with the given id.
func (r *Repository) Get(ctx context.Context, id int64) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks, err := r.store.Load(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Task{}, domain.TaskNotFoundError{ID: id}
}

// Add validates and appends a new task, assigning the next free id.
// The created task is returned.
func (r *Repository) Add(ctx context.Context, title string, priority domain.Priority, category string) (domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Task{}, domain.EmptyTitleError{}
	}
	if !domain.IsValidPriority(priority) {
		return domain.Task{}, domain.InvalidPriorityError{Value: string(priority)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.store.Load(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	task := domain.Task{
		ID:       domain.NextID(all),
		Title:    title,
		Priority: priority,
		Category: strings.TrimSpace(category),
	}
	all = append(all, task)
	if err := r.store.Save(ctx, all); err != nil {
		return domain.Task{}, err
	}
	r.logger.WithFields(log.Fields{"task": task.ID, "priority": task.Priority}).Debug("task added")
	return task, nil
}

// Edit applies the provided fields to an existing task and returns the
// updated task. A provided title must remain non-empty.
func (r *Repository) Edit(ctx context.Context, id int64, upd Update) (domain.Task, error) {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return domain.Task{}, domain.EmptyTitleError{}
	}
	if upd.Priority != nil && !domain.IsValidPriority(*upd.Priority) {
		return domain.Task{}, domain.InvalidPriorityError{Value: string(*upd.Priority)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.store.Load(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return domain.Task{}, domain.TaskNotFoundError{ID: id}
	}
	if upd.Title != nil {
		all[idx].Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Priority != nil {
		all[idx].Priority = *upd.Priority
	}
	if upd.Category != nil {
		all[idx].Category = strings.TrimSpace(*upd.Category)
	}
	if err := r.store.Save(ctx, all); err != nil {
		return domain.Task{}, err
	}
	return all[idx], nil
}

// Delete removes the task with the given id. A missing id is not an
// error; the collection is persisted either way.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.store.Load(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, t := range all {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return r.store.Save(ctx, kept)
}

// ToggleComplete flips the completed flag of the task with the given id
// and returns the updated task.
func (r *Repository) ToggleComplete(ctx context.Context, id int64) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.store.Load(ctx)
	if err != nil {
		return domain.Task{}, err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return domain.Task{}, domain.TaskNotFoundError{ID: id}
	}
	all[idx].Completed = !all[idx].Completed
	if err := r.store.Save(ctx, all); err != nil {
		return domain.Task{}, err
	}
	return all[idx], nil
}

// ClearCompleted removes every completed task and returns how many were
// removed.
func (r *Repository) ClearCompleted(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	kept := all[:0]
	for _, t := range all {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(all) - len(kept)
	if err := r.store.Save(ctx, kept); err != nil {
		return 0, err
	}
	if removed > 0 {
		r.logger.WithField("removed", removed).Debug("cleared completed tasks")
	}
	return removed, nil
}

// Replace swaps the whole collection, validating every task and the id
// uniqueness invariant first. It returns the number of tasks stored.
func (r *Repository) Replace(ctx context.Context, tasks []domain.Task) (int, error) {
	seen := make(map[int64]struct{}, len(tasks))
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return 0, err
		}
		if _, dup := seen[tasks[i].ID]; dup {
			return 0, domain.DuplicateIDError{ID: tasks[i].ID}
		}
		seen[tasks[i].ID] = struct{}{}
		tasks[i].Title = strings.TrimSpace(tasks[i].Title)
		tasks[i].Category = strings.TrimSpace(tasks[i].Category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Save(ctx, tasks); err != nil {
		return 0, err
	}
	r.logger.WithField("count", len(tasks)).Info("task collection replaced")
	return len(tasks), nil
}

func indexOf(tasks []domain.Task, id int64) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
