package ticket

import (
	"time"

	"github.com/tkabange/uangalizi/core"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

var AllStatuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// The default lifecycle is open -> in_progress -> resolved -> closed, but
// administrators may jump between any two distinct statuses.
func CanTransition(from, to Status) bool {
	return from != to && from.Valid() && to.Valid()
}

// Response is one reply on a ticket thread. The thread is append-only and
// replying never alters the ticket status.
type Response struct {
	ID         string    `json:"id"`
	AuthorRole string    `json:"author_role"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"` // UTC
}

type Ticket struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"` // human-readable, sequential, unique
	UserEmail   string     `json:"user_email"`
	UserRole    string     `json:"user_role"`
	Category    string     `json:"category"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Responses   []Response `json:"responses"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
	UpdatedAt   time.Time  `json:"updated_at"` // UTC
}

// NewTicket contains a user's support request. Number may be supplied by
// the caller to make retries detectable; when empty the repository
// allocates the next sequential number.
type NewTicket struct {
	Number      string   `json:"number"`
	UserEmail   string   `json:"user_email" validate:"required,email"`
	UserRole    string   `json:"user_role" validate:"required,oneof=guardian observer principal admin"`
	Category    string   `json:"category" validate:"required"`
	Subject     string   `json:"subject" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Priority    Priority `json:"priority" validate:"required,oneof=low medium high urgent"`
}

func (nt *NewTicket) Validate() error {
	nt.Number = core.CleanString(nt.Number)
	nt.UserEmail = core.CleanString(nt.UserEmail, true /* lower */)
	nt.Category = core.CleanString(nt.Category)
	nt.Subject = core.CleanString(nt.Subject)
	nt.Description = core.CleanString(nt.Description)
	return core.Validate.Struct(nt)
}

// NewReply contains one reply to append to a ticket thread.
type NewReply struct {
	AuthorRole string `json:"author_role" validate:"required,oneof=guardian observer principal admin"`
	Message    string `json:"message" validate:"required"`
}

func (nr *NewReply) Validate() error {
	nr.Message = core.CleanString(nr.Message)
	return core.Validate.Struct(nr)
}
