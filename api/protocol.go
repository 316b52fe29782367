package api

import "todo-api/domain"

const (
	taskBodyMaxSize   = 64 * 1024       // 64 KiB
	importBodyMaxSize = 4 * 1024 * 1024 // 4 MiB
)

// GET /api/tasks response body
type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// POST /api/tasks request body
type addTaskRequest struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

// PATCH /api/tasks/:id request body; nil fields are left unchanged.
type editTaskRequest struct {
	Title    *string `json:"title"`
	Priority *string `json:"priority"`
	Category *string `json:"category"`
}

// DELETE /api/tasks/completed response body
type clearCompletedResponse struct {
	Removed int `json:"removed"`
}

// POST /api/import response body
type importResponse struct {
	Imported int `json:"imported"`
}
