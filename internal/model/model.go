package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// User is the authenticated account as returned by GET /me.
// The client never mutates it; profile edits stay local drafts.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

// DisplayName is the username when set, otherwise the email local part.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Username) != "" {
		return u.Username
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

type Todo struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *Timestamp `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateTodo is the request body for POST /addtodo.
type CreateTodo struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *Timestamp `json:"due_date,omitempty"`
}

// UpdateTodo is the partial body for PUT /todos/{id}. Nil fields are omitted
// so the backend leaves them untouched.
type UpdateTodo struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *Timestamp `json:"due_date,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of the planner transcript. Append-only, never
// persisted beyond the chat session.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TaskData is an AI-proposed task inside a chat reply or a saved plan.
type TaskData struct {
	Title               string    `json:"title"`
	ScheduledFor        Timestamp `json:"scheduled_for"`
	ExpectedTimeMinutes int       `json:"expected_time_minutes"`
	Status              string    `json:"status"`
}

// Plan is a backend-persisted set of AI-generated tasks. Read-only from the
// client's perspective.
type Plan struct {
	ID        string     `json:"_id"`
	UserID    string     `json:"user_id"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	Tasks     []TaskData `json:"tasks"`
}

// Timestamp accepts both calendar dates ("2006-01-02") and full RFC 3339
// instants on the wire. Date-only values round-trip as dates so a due date
// entered without a time never grows one.
type Timestamp struct {
	Time     time.Time
	DateOnly bool
}

const dateLayout = "2006-01-02"

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// NewDate truncates t to its calendar day in t's location.
func NewDate(t time.Time) Timestamp {
	y, m, d := t.Date()
	return Timestamp{Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location()), DateOnly: true}
}

func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Timestamp{Time: t, DateOnly: true}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp: %q", s)
}

func (ts Timestamp) String() string {
	if ts.DateOnly {
		return ts.Time.Format(dateLayout)
	}
	return ts.Time.Format(time.RFC3339)
}

func (ts Timestamp) IsZero() bool { return ts.Time.IsZero() }

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
