package model

import "time"

// Task is a single to-do item belonging to exactly one list.
//
// ListName is a copy of the parent list's name taken when the task was
// created. It is not kept in sync afterwards.
type Task struct {
	ID          int64     `json:"id"          db:"id"`
	ListID      int64     `json:"listId"      db:"list_id"`
	ListName    string    `json:"list"        db:"list"`
	Title       string    `json:"task"        db:"task"`
	Description string    `json:"description" db:"description"` // optional, "" when absent
	ImageURL    string    `json:"img"         db:"img"`         // optional, "" when absent
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}
