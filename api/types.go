package api

import (
	"context"

	"todo-api/domain"
	"todo-api/tasks"
)

// Repository abstracts the task collection for handlers.
type Repository interface {
	List(ctx context.Context) ([]domain.Task, error)
	Get(ctx context.Context, id int64) (domain.Task, error)
	Add(ctx context.Context, title string, priority domain.Priority, category string) (domain.Task, error)
	Edit(ctx context.Context, id int64, upd tasks.Update) (domain.Task, error)
	Delete(ctx context.Context, id int64) error
	ToggleComplete(ctx context.Context, id int64) (domain.Task, error)
	ClearCompleted(ctx context.Context) (int, error)
	Replace(ctx context.Context, t []domain.Task) (int, error)
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}
