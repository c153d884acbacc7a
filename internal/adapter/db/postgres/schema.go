package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"task-user-service/internal/domain/task"
	"task-user-service/internal/domain/user"
)

// StringList is an ordered list of identifiers stored as a JSON array in a
// text column.
type StringList []string

// Value implements driver.Valuer. A nil list is stored as [].
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported string list source %T", src)
	}

	if len(data) == 0 {
		*l = StringList{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// GormDataType keeps the column portable across drivers.
func (StringList) GormDataType() string {
	return "text"
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID           string     `gorm:"primaryKey;size:64"`
	Name         string     `gorm:"not null"`
	Email        string     `gorm:"not null;uniqueIndex"`
	PendingTasks StringList `gorm:"not null"`
	DateCreated  time.Time  `gorm:"not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (s *UserSchema) toDomain() *user.User {
	pending := []string(s.PendingTasks)
	if pending == nil {
		pending = []string{}
	}
	return &user.User{
		ID:           s.ID,
		Name:         s.Name,
		Email:        s.Email,
		PendingTasks: pending,
		DateCreated:  s.DateCreated.UTC(),
	}
}

func userSchemaFrom(u *user.User) UserSchema {
	return UserSchema{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PendingTasks: StringList(u.PendingTasks),
		DateCreated:  u.DateCreated,
	}
}

// TaskSchema represents the database schema for the tasks table. There is no
// foreign key on AssignedUser.
type TaskSchema struct {
	ID               string    `gorm:"primaryKey;size:64"`
	Name             string    `gorm:"not null"`
	Description      string    `gorm:"not null;default:''"`
	Deadline         time.Time `gorm:"not null"`
	Completed        bool      `gorm:"not null;default:false"`
	AssignedUser     string    `gorm:"not null;default:'';index"`
	AssignedUserName string    `gorm:"not null"`
	DateCreated      time.Time `gorm:"not null"`
}

// TableName specifies the table name for the TaskSchema model.
func (TaskSchema) TableName() string {
	return "tasks"
}

func (s *TaskSchema) toDomain() *task.Task {
	return &task.Task{
		ID:               s.ID,
		Name:             s.Name,
		Description:      s.Description,
		Deadline:         s.Deadline.UTC(),
		Completed:        s.Completed,
		AssignedUser:     s.AssignedUser,
		AssignedUserName: s.AssignedUserName,
		DateCreated:      s.DateCreated.UTC(),
	}
}

func taskSchemaFrom(t *task.Task) TaskSchema {
	return TaskSchema{
		ID:               t.ID,
		Name:             t.Name,
		Description:      t.Description,
		Deadline:         t.Deadline.UTC(),
		Completed:        t.Completed,
		AssignedUser:     t.AssignedUser,
		AssignedUserName: t.AssignedUserName,
		DateCreated:      t.DateCreated.UTC(),
	}
}

// Models lists the schemas migrated at startup.
func Models() []any {
	return []any{&UserSchema{}, &TaskSchema{}}
}
