package models

// Identity is the signed-in user as known to the client
type Identity struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// Project represents a project with server-computed progress
type Project struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	CreatedAt          Timestamp `json:"createdAt"`
	TotalTasks         int       `json:"totalTasks"`
	CompletedTasks     int       `json:"completedTasks"`
	ProgressPercentage float64   `json:"progressPercentage"` // authoritative, never recomputed
}

// ProjectRequest is the payload for creating a project
type ProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Task represents a single task. The owning project is implied by the URL it was fetched from.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     Date      `json:"dueDate"`
	Completed   bool      `json:"completed"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// TaskRequest is the payload for creating a task
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     Date   `json:"dueDate"`
}

// LoginRequest carries credentials for /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by a successful login
type AuthResponse struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// Identity returns the user described by the response
func (r AuthResponse) Identity() Identity {
	return Identity{Email: r.Email, FullName: r.FullName}
}
