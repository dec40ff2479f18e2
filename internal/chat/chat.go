package chat

import (
	"time"

	"github.com/Yaroslav326/TaskManagement/internal/user"
)

// ScopeKey identifies a chat room's scope. DepartmentID zero means the
// company-wide room. The type is comparable so disjoint scopes can key
// registry tables and sequence locks directly.
type ScopeKey struct {
	CompanyID    int64
	DepartmentID int64
}

// DepartmentRef returns the nullable department reference persisted with a
// message; nil for the company-wide room.
func (k ScopeKey) DepartmentRef() *int64 {
	if k.DepartmentID == 0 {
		return nil
	}
	id := k.DepartmentID
	return &id
}

// Message is one persisted chat line. DepartmentID is null for messages
// posted in the company-wide room.
type Message struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Body         string    `json:"message" gorm:"column:message"`
	UserID       int64     `json:"user_id"`
	CompanyID    int64     `json:"company_id"`
	DepartmentID *int64    `json:"department_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	User *user.User `json:"-" gorm:"foreignKey:UserID"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) Scope() ScopeKey {
	k := ScopeKey{CompanyID: m.CompanyID}
	if m.DepartmentID != nil {
		k.DepartmentID = *m.DepartmentID
	}
	return k
}

// OutboundMessage is the frame broadcast to room subscribers for each
// posted message.
type OutboundMessage struct {
	Username string `json:"username"`
	Body     string `json:"message"`
}

// HistoryFrame carries the room backlog sent once after a successful join.
type HistoryFrame struct {
	Type     string            `json:"type"`
	Messages []OutboundMessage `json:"messages"`
}

// ErrorFrame reports a per-message failure to the sender only; the
// connection stays open.
type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

const (
	FrameHistory = "history"
	FrameError   = "error"
)

// InboundMessage is the only frame clients may send.
type InboundMessage struct {
	Body string `json:"message"`
}
