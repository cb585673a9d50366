package inquiry

import (
	"time"

	"github.com/tkabange/uangalizi/core"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusEnrolled  Status = "enrolled"
	StatusClosed    Status = "closed"
)

var AllStatuses = []Status{StatusNew, StatusContacted, StatusEnrolled, StatusClosed}

func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// transitions is the explicit validation table. Administrators may move an
// inquiry between any two distinct statuses, including backward moves; the
// table exists so the policy can be tightened in one place.
var transitions = map[Status][]Status{
	StatusNew:       {StatusContacted, StatusEnrolled, StatusClosed},
	StatusContacted: {StatusNew, StatusEnrolled, StatusClosed},
	StatusEnrolled:  {StatusNew, StatusContacted, StatusClosed},
	StatusClosed:    {StatusNew, StatusContacted, StatusEnrolled},
}

func CanTransition(from, to Status) bool {
	for _, st := range transitions[from] {
		if st == to {
			return true
		}
	}
	return false
}

// Inquiry is a contact-form submission from a prospective guardian.
type Inquiry struct {
	ID         string    `json:"id"`
	ParentName string    `json:"parent_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	ChildName  string    `json:"child_name"`
	ChildAge   int       `json:"child_age"`
	SchoolName string    `json:"school_name,omitempty"`
	Message    string    `json:"message,omitempty"`
	Status     Status    `json:"status"`
	Notes      string    `json:"notes"` // admin notes, stored verbatim
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// NewInquiry contains an external contact-form submission.
type NewInquiry struct {
	ParentName string `json:"parent_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,min=7"`
	ChildName  string `json:"child_name" validate:"required"`
	ChildAge   int    `json:"child_age" validate:"required,min=1,max=18"`
	SchoolName string `json:"school_name"`
	Message    string `json:"message"`
}

func (ni *NewInquiry) Validate() error {
	ni.ParentName = core.CleanString(ni.ParentName)
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	ni.Phone = core.CleanString(ni.Phone)
	ni.ChildName = core.CleanString(ni.ChildName)
	ni.SchoolName = core.CleanString(ni.SchoolName)
	return core.Validate.Struct(ni)
}

type QueryFilter struct {
	Search string `query:"search"`
	Status Status `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
