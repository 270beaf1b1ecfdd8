package model

import "time"

// List is a named collection of tasks owned by exactly one user.
//
// WHY *int FOR TotalTasks?
// The column is nullable: a list that never had a task added has no cached
// count at all (NULL), which is different from "0 tasks after a recount".
// A pointer is the usual Go way to model SQL NULL for a value type.
//
// TotalTasks is recomputed only when a task is created. Deleting a task does
// not touch it, so it can run ahead of the real count.
type List struct {
	ID         int64     `json:"id"         db:"id"`
	AuthorID   int64     `json:"authorId"   db:"author_id"`
	Name       string    `json:"name"       db:"list"`
	TotalTasks *int      `json:"totalTasks" db:"total_tasks"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}

// OwnedBy reports whether the list was authored by the given identity.
func (l *List) OwnedBy(owner Identifiable) bool {
	return owner != nil && l.AuthorID == owner.Identity()
}

// Total returns the cached task count, treating NULL as zero.
func (l *List) Total() int {
	if l.TotalTasks == nil {
		return 0
	}
	return *l.TotalTasks
}
