package domain

import "fmt"

// EmptyTitleError indicates an add or edit supplied a blank title.
type EmptyTitleError struct{}

func (e EmptyTitleError) Error() string {
	return "task title must not be empty"
}

// InvalidPriorityError indicates a priority value outside Low/Medium/High.
type InvalidPriorityError struct {
	Value string
}

func (e InvalidPriorityError) Error() string {
	return fmt.Sprintf("invalid priority: %q (valid: Low, Medium, High)", e.Value)
}

// DuplicateIDError indicates an imported collection repeats a task id.
type DuplicateIDError struct {
	ID int64
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate task id: %d", e.ID)
}

// TaskNotFoundError indicates the task id doesn't match any stored task.
type TaskNotFoundError struct {
	ID int64
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %d", e.ID)
}

// ValidationError is implemented by errors caused by bad user input.
// Handlers use it to separate 400 responses from storage failures.
type ValidationError interface {
	error
	Validation()
}

func (EmptyTitleError) Validation()      {}
func (InvalidPriorityError) Validation() {}
func (DuplicateIDError) Validation()     {}
