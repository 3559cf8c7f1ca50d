package models

import "time"

// Task status enumeration. The column is free text in Postgres; the
// application is the gatekeeper.
const (
	StatusToDo  = "TO_DO"
	StatusDoing = "DOING"
	StatusDone  = "DONE"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusToDo, StatusDoing, StatusDone:
		return true
	default:
		return false
	}
}

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Team struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Status       string    `json:"status"`
	ExternalLink *string   `json:"external_link"`
	CreatedBy    int       `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AttachmentRef is the compact name/url pair embedded in task responses.
type AttachmentRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// TaskDetail is a task with its resolved team names and attachment refs,
// the shape every task endpoint returns.
type TaskDetail struct {
	Task
	Teams       []string        `json:"teams"`
	Attachments []AttachmentRef `json:"attachments"`
}

type TaskAttachment struct {
	ID           int       `json:"id"`
	TaskID       int       `json:"task_id"`
	FileName     string    `json:"file_name"`
	OriginalName string    `json:"original_name"`
	FilePath     string    `json:"-"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	UploadedBy   int       `json:"uploaded_by"`
	DownloadURL  string    `json:"download_url"`
	CreatedAt    time.Time `json:"created_at"`
}
