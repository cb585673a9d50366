package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/tkabange/uangalizi/core/student"
)

type studentRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	DateOfBirth time.Time   `db:"date_of_birth"`
	Grade       string      `db:"grade"`
	SchoolID    null.String `db:"school_id"`
	Status      string      `db:"status"`
	PrincipalID null.String `db:"principal_id"`
	ObserverID  null.String `db:"observer_id"`
	EnrolledAt  time.Time   `db:"enrolled_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r studentRow) student(guardianIDs []string) student.Student {
	return student.Student{
		ID:          r.ID,
		Name:        r.Name,
		DateOfBirth: r.DateOfBirth,
		Grade:       r.Grade,
		SchoolID:    r.SchoolID,
		Status:      student.Status(r.Status),
		GuardianIDs: guardianIDs,
		PrincipalID: r.PrincipalID,
		ObserverID:  r.ObserverID,
		EnrolledAt:  r.EnrolledAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

var studentOrderFields = map[string]bool{"name": true, "grade": true, "enrolled_at": true}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) trapNoRowsErr(err error, msg string) error {
	if isNoRows(err) {
		return student.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo *studentRepository) guardianIDs(ctx context.Context, q sqlx.QueryerContext, studentID string) ([]string, error) {
	var ids []string
	query := `SELECT guardian_id FROM student_guardian WHERE student_id = $1 ORDER BY guardian_id`
	if err := sqlx.SelectContext(ctx, q, &ids, query, studentID); err != nil {
		return nil, wrapErr(err, "loading student guardians")
	}
	return ids, nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO student (id, name, date_of_birth, grade, school_id, status, principal_id, observer_id, enrolled_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		_, err := tx.ExecContext(ctx, query,
			stu.ID, stu.Name, stu.DateOfBirth, stu.Grade, stu.SchoolID, stu.Status,
			stu.PrincipalID, stu.ObserverID, stu.EnrolledAt, stu.UpdatedAt)
		if err != nil {
			return wrapErr(err, "inserting student")
		}
		for _, gid := range stu.GuardianIDs {
			query = `INSERT INTO student_guardian (student_id, guardian_id) VALUES ($1, $2)`
			if _, err = tx.ExecContext(ctx, query, stu.ID, gid); err != nil {
				return wrapErr(err, "linking guardian")
			}
		}
		return nil
	})
	if err != nil {
		return student.Student{}, err
	}
	return stu, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
	}
	ids, err := repo.guardianIDs(ctx, repo.db, id)
	if err != nil {
		return student.Student{}, err
	}
	return row.student(ids), nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	query := `SELECT * FROM student WHERE 1=1`
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND name ILIKE ` + dollar(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = ` + dollar(len(args))
	}
	if filter.SchoolID != "" {
		args = append(args, filter.SchoolID)
		query += ` AND school_id = ` + dollar(len(args))
	}
	if filter.GuardianID != "" {
		args = append(args, filter.GuardianID)
		query += ` AND id IN (SELECT student_id FROM student_guardian WHERE guardian_id = ` + dollar(len(args)) + `)`
	}
	if filter.ObserverID != "" {
		args = append(args, filter.ObserverID)
		query += ` AND observer_id = ` + dollar(len(args))
	}
	if filter.Unassigned != nil {
		if *filter.Unassigned {
			query += ` AND observer_id IS NULL`
		} else {
			query += ` AND observer_id IS NOT NULL`
		}
	}
	query += ` ORDER BY ` + orderClause(filter.Orderings, studentOrderFields, "name")

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr(err, "filtering students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		ids, err := repo.guardianIDs(ctx, repo.db, row.ID)
		if err != nil {
			return nil, err
		}
		students = append(students, row.student(ids))
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	query := `
		UPDATE student
		SET name = $2, date_of_birth = $3, grade = $4, school_id = $5, status = $6, principal_id = $7, updated_at = $8
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		stu.ID, stu.Name, stu.DateOfBirth, stu.Grade, stu.SchoolID, stu.Status, stu.PrincipalID, stu.UpdatedAt)
	if err != nil {
		return student.Student{}, wrapErr(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return stu, nil
}

func (repo *studentRepository) AddGuardian(ctx context.Context, studentID, guardianID string) (student.Student, error) {
	var stu student.Student
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var row studentRow
		if err := tx.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1 FOR UPDATE`, studentID); err != nil {
			return repo.trapNoRowsErr(err, "finding student by ID")
		}

		query := `INSERT INTO student_guardian (student_id, guardian_id) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, query, studentID, guardianID); err != nil {
			if isUniqueViolation(err) {
				return student.ErrGuardianLinked
			}
			return wrapErr(err, "linking guardian")
		}

		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `UPDATE student SET updated_at = $2 WHERE id = $1`, studentID, now); err != nil {
			return wrapErr(err, "updating student")
		}
		row.UpdatedAt = now

		ids, err := repo.guardianIDs(ctx, tx, studentID)
		if err != nil {
			return err
		}
		stu = row.student(ids)
		return nil
	})
	if err != nil {
		return student.Student{}, err
	}
	return stu, nil
}

func (repo *studentRepository) RemoveGuardian(ctx context.Context, studentID, guardianID string) (student.Student, error) {
	var stu student.Student
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var row studentRow
		if err := tx.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1 FOR UPDATE`, studentID); err != nil {
			return repo.trapNoRowsErr(err, "finding student by ID")
		}

		query := `DELETE FROM student_guardian WHERE student_id = $1 AND guardian_id = $2`
		res, err := tx.ExecContext(ctx, query, studentID, guardianID)
		if err != nil {
			return wrapErr(err, "unlinking guardian")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return student.ErrGuardianNotLinked
		}

		now := time.Now().UTC()
		if _, err = tx.ExecContext(ctx, `UPDATE student SET updated_at = $2 WHERE id = $1`, studentID, now); err != nil {
			return wrapErr(err, "updating student")
		}
		row.UpdatedAt = now

		ids, err := repo.guardianIDs(ctx, tx, studentID)
		if err != nil {
			return err
		}
		stu = row.student(ids)
		return nil
	})
	if err != nil {
		return student.Student{}, err
	}
	return stu, nil
}

// AssignObserver locks the observer row so the capacity check and the
// assignment write are atomic under concurrent assignment attempts.
func (repo *studentRepository) AssignObserver(ctx context.Context, studentID, observerID string) (student.Student, error) {
	var stu student.Student
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var capacity int
		err := tx.GetContext(ctx, &capacity, `SELECT capacity FROM observer WHERE id = $1 FOR UPDATE`, observerID)
		if err != nil {
			return repo.trapNoRowsErr(err, "finding observer by ID")
		}

		var row studentRow
		if err = tx.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1 FOR UPDATE`, studentID); err != nil {
			return repo.trapNoRowsErr(err, "finding student by ID")
		}
		if row.ObserverID.Valid {
			return student.ErrAlreadyAssigned
		}

		var count int
		err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM student WHERE observer_id = $1`, observerID)
		if err != nil {
			return wrapErr(err, "counting assigned students")
		}
		if count >= capacity {
			return student.ErrObserverFull
		}

		now := time.Now().UTC()
		query := `UPDATE student SET observer_id = $2, updated_at = $3 WHERE id = $1`
		if _, err = tx.ExecContext(ctx, query, studentID, observerID, now); err != nil {
			return wrapErr(err, "assigning observer")
		}
		row.ObserverID = null.StringFrom(observerID)
		row.UpdatedAt = now

		ids, err := repo.guardianIDs(ctx, tx, studentID)
		if err != nil {
			return err
		}
		stu = row.student(ids)
		return nil
	})
	if err != nil {
		return student.Student{}, err
	}
	return stu, nil
}

func (repo *studentRepository) UnassignObserver(ctx context.Context, studentID string) (student.Student, error) {
	var stu student.Student
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var row studentRow
		if err := tx.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1 FOR UPDATE`, studentID); err != nil {
			return repo.trapNoRowsErr(err, "finding student by ID")
		}
		if !row.ObserverID.Valid {
			return student.ErrNotAssigned
		}

		now := time.Now().UTC()
		query := `UPDATE student SET observer_id = NULL, updated_at = $2 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query, studentID, now); err != nil {
			return wrapErr(err, "unassigning observer")
		}
		row.ObserverID = null.String{}
		row.UpdatedAt = now

		ids, err := repo.guardianIDs(ctx, tx, studentID)
		if err != nil {
			return err
		}
		stu = row.student(ids)
		return nil
	})
	if err != nil {
		return student.Student{}, err
	}
	return stu, nil
}

func (repo *studentRepository) CountAssigned(ctx context.Context, observerID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM student WHERE observer_id = $1`, observerID)
	if err != nil {
		return 0, wrapErr(err, "counting assigned students")
	}
	return count, nil
}
