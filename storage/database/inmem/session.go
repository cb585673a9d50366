package inmemdb

import (
	"context"
	"time"

	"github.com/tkabange/uangalizi/core/session"
)

type sessionRepository struct {
	db *DB
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, ses session.Session) (session.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.sessions[ses.ID] = &ses
	return ses, nil
}

func (repo *sessionRepository) FilterSessions(ctx context.Context, filter session.QueryFilter) ([]session.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sessions := make([]session.Session, 0, len(repo.db.sessions))
	for _, ses := range repo.db.sessions {
		if filter.StudentID != "" && ses.StudentID != filter.StudentID {
			continue
		}
		if filter.ObserverID != "" && ses.ObserverID != filter.ObserverID {
			continue
		}
		if filter.Status != "" && ses.Status != filter.Status {
			continue
		}
		if !inRange(ses.Date, filter.From, filter.To) {
			continue
		}
		sessions = append(sessions, *ses)
	}
	return sessions, nil
}

func (repo *sessionRepository) CreateConsultation(ctx context.Context, con session.Consultation) (session.Consultation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.consultations[con.ID] = &con
	return con, nil
}

func (repo *sessionRepository) FilterConsultations(ctx context.Context, principalID string, from, to time.Time) ([]session.Consultation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	consultations := make([]session.Consultation, 0, len(repo.db.consultations))
	for _, con := range repo.db.consultations {
		if principalID != "" && con.PrincipalID != principalID {
			continue
		}
		if !inRange(con.Date, from, to) {
			continue
		}
		consultations = append(consultations, *con)
	}
	return consultations, nil
}

// inRange bounds t as [from, to); zero bounds are open.
func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
