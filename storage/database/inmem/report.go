package inmemdb

import (
	"context"

	"github.com/tkabange/uangalizi/core/report"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CreateReport(ctx context.Context, rep report.DailyReport) (report.DailyReport, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.reports[rep.ID] = &rep
	return rep, nil
}

func (repo *reportRepository) GetReportByID(ctx context.Context, id string) (report.DailyReport, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rep, ok := repo.db.reports[id]; ok {
		return *rep, nil
	}
	return report.DailyReport{}, report.ErrNotFound
}

func (repo *reportRepository) FilterReports(ctx context.Context, filter report.QueryFilter) ([]report.DailyReport, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reports := make([]report.DailyReport, 0, len(repo.db.reports))
	for _, rep := range repo.db.reports {
		if filter.StudentID != "" && rep.StudentID != filter.StudentID {
			continue
		}
		if filter.ObserverID != "" && rep.ObserverID != filter.ObserverID {
			continue
		}
		if filter.ReviewStatus != "" && rep.ReviewStatus != filter.ReviewStatus {
			continue
		}
		reports = append(reports, *rep)
	}
	return reports, nil
}

func (repo *reportRepository) UpdateReport(ctx context.Context, rep report.DailyReport) (report.DailyReport, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.reports[rep.ID]; !ok {
		return report.DailyReport{}, report.ErrNotFound
	}
	repo.db.reports[rep.ID] = &rep
	return rep, nil
}
