// Package inmemdb is a mutex-protected in-memory implementation of the
// core repositories. It backs tests and local development; the sqlxrepos
// package is the production implementation.
package inmemdb

import (
	"sync"

	"github.com/tkabange/uangalizi/core/billing"
	"github.com/tkabange/uangalizi/core/guardian"
	"github.com/tkabange/uangalizi/core/inquiry"
	"github.com/tkabange/uangalizi/core/observer"
	"github.com/tkabange/uangalizi/core/principal"
	"github.com/tkabange/uangalizi/core/report"
	"github.com/tkabange/uangalizi/core/session"
	"github.com/tkabange/uangalizi/core/staff"
	"github.com/tkabange/uangalizi/core/student"
	"github.com/tkabange/uangalizi/core/ticket"
)

type DB struct {
	mutex sync.RWMutex

	guardians     map[string]*guardian.Guardian
	students      map[string]*student.Student
	observers     map[string]*observer.Observer
	principals    map[string]*principal.Principal
	schools       map[string]*principal.School
	sessions      map[string]*session.Session
	consultations map[string]*session.Consultation
	payments      map[string]*billing.Payment
	inquiries     map[string]*inquiry.Inquiry
	reports       map[string]*report.DailyReport
	tickets       map[string]*ticket.Ticket
	staff         map[string]*staff.Staff

	ticketSeq int
}

func Open() (*DB, error) {
	return &DB{
		guardians:     make(map[string]*guardian.Guardian),
		students:      make(map[string]*student.Student),
		observers:     make(map[string]*observer.Observer),
		principals:    make(map[string]*principal.Principal),
		schools:       make(map[string]*principal.School),
		sessions:      make(map[string]*session.Session),
		consultations: make(map[string]*session.Consultation),
		payments:      make(map[string]*billing.Payment),
		inquiries:     make(map[string]*inquiry.Inquiry),
		reports:       make(map[string]*report.DailyReport),
		tickets:       make(map[string]*ticket.Ticket),
		staff:         make(map[string]*staff.Staff),
	}, nil
}
