package api

import "github.com/phrazzld/tasklist-api/internal/domain"

// RegisterRequest defines the payload for the user registration endpoint.
// Fields are checked by the auth service after the duplicate-email lookup,
// so a taken email is reported even when the rest of the payload is invalid.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest defines the payload for the user login endpoint. Fields are
// not validated; missing credentials simply fail to match.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskRequest defines the payload for creating a task. Blank titles
// are rejected by the domain after trimming.
type CreateTaskRequest struct {
	Title string `json:"title" validate:"required"`
}

// UpdateTaskRequest is a partial update; absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Patch converts the request into a domain patch.
func (r UpdateTaskRequest) Patch() domain.TaskPatch {
	return domain.TaskPatch{Title: r.Title, Completed: r.Completed}
}
