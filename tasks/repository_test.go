package tasks

import (
	"context"
	"errors"
	"testing"

	"todo-api/domain"
)

// memStore keeps the collection in memory and counts saves so tests can
// assert the persist-on-every-mutation contract.
type memStore struct {
	tasks []domain.Task
	saves int
	err   error
}

func (m *memStore) Load(ctx context.Context) ([]domain.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Task, len(m.tasks))
	copy(out, m.tasks)
	return out, nil
}

func (m *memStore) Save(ctx context.Context, tasks []domain.Task) error {
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.tasks = make([]domain.Task, len(tasks))
	copy(m.tasks, tasks)
	return nil
}

func newTestRepo(seed ...domain.Task) (*Repository, *memStore) {
	st := &memStore{tasks: seed}
	return New(st, nil), st
}

func TestAddAssignsIDAndPersists(t *testing.T) {
	repo, st := newTestRepo()
	ctx := context.Background()

	task, err := repo.Add(ctx, "  Buy milk  ", domain.PriorityLow, " Personal ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.ID != 1 {
		t.Fatalf("first id = %d, want 1", task.ID)
	}
	if task.Title != "Buy milk" || task.Category != "Personal" {
		t.Fatalf("expected trimmed fields, got %+v", task)
	}
	if task.Completed {
		t.Fatal("new task must start not completed")
	}
	if len(st.tasks) != 1 {
		t.Fatalf("expected 1 persisted task, got %d", len(st.tasks))
	}
	if st.saves != 1 {
		t.Fatalf("expected 1 save, got %d", st.saves)
	}

	second, err := repo.Add(ctx, "Next", domain.PriorityHigh, "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if second.ID != 2 {
		t.Fatalf("second id = %d, want 2", second.ID)
	}
}

func TestAddIDsSkipGaps(t *testing.T) {
	repo, _ := newTestRepo(
		domain.Task{ID: 1, Title: "a", Priority: domain.PriorityLow},
		domain.Task{ID: 9, Title: "b", Priority: domain.PriorityLow},
	)
	task, err := repo.Add(context.Background(), "c", domain.PriorityMedium, "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.ID != 10 {
		t.Fatalf("id = %d, want max+1 = 10", task.ID)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	repo, st := newTestRepo()
	ctx := context.Background()

	tests := map[string]struct {
		title    string
		priority domain.Priority
	}{
		"empty title":      {title: "", priority: domain.PriorityLow},
		"whitespace title": {title: "   ", priority: domain.PriorityLow},
		"bad priority":     {title: "ok", priority: "Urgent"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Add(ctx, tt.title, tt.priority, "")
			var ve domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if st.saves != 0 || len(st.tasks) != 0 {
		t.Fatalf("rejected adds must leave the collection unchanged, saves=%d tasks=%d", st.saves, len(st.tasks))
	}
}

func TestEdit(t *testing.T) {
	repo, st := newTestRepo(
		domain.Task{ID: 1, Title: "Old", Priority: domain.PriorityLow, Category: "Work"},
	)
	ctx := context.Background()

	title := "New title"
	priority := domain.PriorityHigh
	got, err := repo.Edit(ctx, 1, Update{Title: &title, Priority: &priority})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got.Title != "New title" || got.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected task after edit: %+v", got)
	}
	if got.Category != "Work" {
		t.Fatalf("omitted field must stay unchanged, got %q", got.Category)
	}
	if st.tasks[0] != got {
		t.Fatalf("edit not persisted: %+v", st.tasks[0])
	}
}

func TestEditMissingID(t *testing.T) {
	repo, st := newTestRepo()
	title := "x"
	_, err := repo.Edit(context.Background(), 42, Update{Title: &title})
	var notFound domain.TaskNotFoundError
	if !errors.As(err, &notFound) || notFound.ID != 42 {
		t.Fatalf("expected TaskNotFoundError{42}, got %v", err)
	}
	if st.saves != 0 {
		t.Fatalf("failed edit must not persist, saves=%d", st.saves)
	}
}

func TestEditRejectsEmptyTitle(t *testing.T) {
	repo, st := newTestRepo(
		domain.Task{ID: 1, Title: "keep", Priority: domain.PriorityLow},
	)
	blank := "  "
	_, err := repo.Edit(context.Background(), 1, Update{Title: &blank})
	var emptyTitle domain.EmptyTitleError
	if !errors.As(err, &emptyTitle) {
		t.Fatalf("expected EmptyTitleError, got %v", err)
	}
	if st.tasks[0].Title != "keep" {
		t.Fatalf("task modified by rejected edit: %+v", st.tasks[0])
	}
}

func TestDeleteMissingIDIsNoop(t *testing.T) {
	repo, st := newTestRepo(
		domain.Task{ID: 1, Title: "a", Priority: domain.PriorityLow},
	)
	if err := repo.Delete(context.Background(), 99); err != nil {
		t.Fatalf("delete of absent id must not fail: %v", err)
	}
	if len(st.tasks) != 1 {
		t.Fatalf("collection changed: %+v", st.tasks)
	}
	if st.saves != 1 {
		t.Fatalf("delete persists either way, saves=%d", st.saves)
	}
}

func TestDelete(t *testing.T) {
	repo, st := newTestRepo(
		domain.Task{ID: 1, Title: "a", Priority: domain.PriorityLow},
		domain.Task{ID: 2, Title: "b", Priority: domain.PriorityLow},
	)
	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(st.tasks) != 1 || st.tasks[0].ID != 2 {
		t.Fatalf("unexpected collection after delete: %+v", st.tasks)
	}
}

func TestToggleCompleteTwiceRestores(t *testing.T) {
	repo, _ := newTestRepo(
		domain.Task{ID: 1, Title: "a", Priority: domain.PriorityLow},
	)
	ctx := context.Background()

	first, err := repo.ToggleComplete(ctx, 1)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !first.Completed {
		t.Fatal("expected completed=true after first toggle")
	}
	second, err := repo.ToggleComplete(ctx, 1)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if second.Completed {
		t.Fatal("expected completed=false after second toggle")
	}
}

func TestToggleCompleteMissingID(t *testing.T) {
	repo, _ := newTestRepo()
	_, err := repo.ToggleComplete(context.Background(), 7)
	var notFound domain.TaskNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected TaskNotFoundError, got %v", err)
	}
}

func TestClearCompleted(t *testing.T) {
	repo, st := newTestRepo(
		domain.Task{ID: 1, Title: "a", Priority: domain.PriorityLow, Completed: true},
		domain.Task{ID: 2, Title: "b", Priority: domain.PriorityLow},
		domain.Task{ID: 3, Title: "c", Priority: domain.PriorityLow, Completed: true},
	)
	removed, err := repo.ClearCompleted(context.Background())
	if err != nil {
		t.Fatalf("clear completed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	for _, task := range st.tasks {
		if task.Completed {
			t.Fatalf("completed task survived: %+v", task)
		}
	}
}

func TestGet(t *testing.T) {
	repo, _ := newTestRepo(
		domain.Task{ID: 5, Title: "a", Priority: domain.PriorityLow},
	)
	got, err := repo.Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != 5 {
		t.Fatalf("got %+v", got)
	}
	if _, err := repo.Get(context.Background(), 6); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestReplace(t *testing.T) {
	repo, st := newTestRepo(
		domain.Task{ID: 1, Title: "old", Priority: domain.PriorityLow},
	)
	imported := []domain.Task{
		{ID: 10, Title: "x", Priority: domain.PriorityHigh, Category: "Work"},
		{ID: 11, Title: "y", Priority: domain.PriorityLow, Completed: true},
	}
	count, err := repo.Replace(context.Background(), imported)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if count != 2 || len(st.tasks) != 2 {
		t.Fatalf("count=%d persisted=%d", count, len(st.tasks))
	}
}

func TestReplaceRejectsDuplicateIDs(t *testing.T) {
	repo, st := newTestRepo()
	imported := []domain.Task{
		{ID: 1, Title: "x", Priority: domain.PriorityHigh},
		{ID: 1, Title: "y", Priority: domain.PriorityLow},
	}
	_, err := repo.Replace(context.Background(), imported)
	var dup domain.DuplicateIDError
	if !errors.As(err, &dup) || dup.ID != 1 {
		t.Fatalf("expected DuplicateIDError{1}, got %v", err)
	}
	if st.saves != 0 {
		t.Fatal("rejected import must not persist")
	}
}

func TestReplaceRejectsInvalidTask(t *testing.T) {
	repo, _ := newTestRepo()
	_, err := repo.Replace(context.Background(), []domain.Task{{ID: 1, Title: "", Priority: domain.PriorityLow}})
	var ve domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	st := &memStore{err: errors.New("disk gone")}
	repo := New(st, nil)
	ctx := context.Background()

	if _, err := repo.List(ctx); err == nil {
		t.Fatal("expected error from List")
	}
	if _, err := repo.Add(ctx, "x", domain.PriorityLow, ""); err == nil {
		t.Fatal("expected error from Add")
	}
}

// Lifecycle walk: add, toggle, clear against a fresh store.
func TestLifecycle(t *testing.T) {
	repo, st := newTestRepo()
	ctx := context.Background()

	task, err := repo.Add(ctx, "Buy milk", domain.PriorityLow, "Personal")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].Completed {
		t.Fatalf("expected one active task, got %+v", all)
	}

	toggled, err := repo.ToggleComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Fatal("expected completed=true")
	}

	if _, err := repo.ClearCompleted(ctx); err != nil {
		t.Fatalf("clear completed: %v", err)
	}
	if len(st.tasks) != 0 {
		t.Fatalf("expected empty collection, got %+v", st.tasks)
	}
}
