package report

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core"
)

type ReviewStatus string

const (
	StatusPendingReview ReviewStatus = "pending_review"
	StatusReviewed      ReviewStatus = "reviewed"
	StatusApproved      ReviewStatus = "approved"
	StatusFlagged       ReviewStatus = "flagged"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPendingReview, StatusReviewed, StatusApproved, StatusFlagged:
		return true
	}
	return false
}

// Terminal reports can no longer be reviewed; "reviewed" is a soft
// intermediate that still allows approval or flagging.
func (s ReviewStatus) Terminal() bool {
	return s == StatusApproved || s == StatusFlagged
}

var transitions = map[ReviewStatus][]ReviewStatus{
	StatusPendingReview: {StatusReviewed, StatusApproved, StatusFlagged},
	StatusReviewed:      {StatusApproved, StatusFlagged},
}

func CanTransition(from, to ReviewStatus) bool {
	for _, st := range transitions[from] {
		if st == to {
			return true
		}
	}
	return false
}

// DailyReport is an observer's write-up of one day with a student.
// Feedback is always set by a review, even when blank; null means
// the report has not been reviewed yet.
type DailyReport struct {
	ID           string       `json:"id"`
	StudentID    string       `json:"student_id"`
	ObserverID   string       `json:"observer_id"`
	Content      string       `json:"content"`
	Observations string       `json:"observations,omitempty"`
	ReviewStatus ReviewStatus `json:"review_status"`
	Feedback     null.String  `json:"feedback,omitempty"`
	CreatedAt    time.Time    `json:"created_at"` // UTC
	ReviewedAt   null.Time    `json:"reviewed_at,omitempty"`
}

// NewReport contains an observer's daily report submission.
type NewReport struct {
	StudentID    string `json:"student_id" validate:"required"`
	ObserverID   string `json:"observer_id" validate:"required"`
	Content      string `json:"content" validate:"required"`
	Observations string `json:"observations"`
}

func (nr *NewReport) Validate() error {
	nr.Content = core.CleanString(nr.Content)
	nr.Observations = core.CleanString(nr.Observations)
	return core.Validate.Struct(nr)
}

type QueryFilter struct {
	StudentID    string       `query:"student_id"`
	ObserverID   string       `query:"observer_id"`
	ReviewStatus ReviewStatus `query:"review_status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.ObserverID == "" && qf.ReviewStatus == ""
}
