package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tkabange/uangalizi/core/ticket"
)

type ticketRow struct {
	ID          string    `db:"id"`
	Number      string    `db:"number"`
	UserEmail   string    `db:"user_email"`
	UserRole    string    `db:"user_role"`
	Category    string    `db:"category"`
	Subject     string    `db:"subject"`
	Description string    `db:"description"`
	Priority    string    `db:"priority"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r ticketRow) ticket(responses []ticket.Response) ticket.Ticket {
	return ticket.Ticket{
		ID:          r.ID,
		Number:      r.Number,
		UserEmail:   r.UserEmail,
		UserRole:    r.UserRole,
		Category:    r.Category,
		Subject:     r.Subject,
		Description: r.Description,
		Priority:    ticket.Priority(r.Priority),
		Status:      ticket.Status(r.Status),
		Responses:   responses,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type responseRow struct {
	ID         string    `db:"id"`
	TicketID   string    `db:"ticket_id"`
	AuthorRole string    `db:"author_role"`
	Message    string    `db:"message"`
	At         time.Time `db:"at"`
}

func (r responseRow) response() ticket.Response {
	return ticket.Response{
		ID:         r.ID,
		AuthorRole: r.AuthorRole,
		Message:    r.Message,
		At:         r.At,
	}
}

type ticketRepository struct {
	db *sqlx.DB
}

var _ ticket.Repository = (*ticketRepository)(nil)

func NewTicketRepository(db *sqlx.DB) *ticketRepository {
	return &ticketRepository{db: db}
}

func (repo *ticketRepository) trapNoRowsErr(err error, msg string) error {
	if isNoRows(err) {
		return ticket.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo *ticketRepository) responses(ctx context.Context, ticketID string) ([]ticket.Response, error) {
	var rows []responseRow
	query := `SELECT * FROM ticket_response WHERE ticket_id = $1 ORDER BY at`
	if err := repo.db.SelectContext(ctx, &rows, query, ticketID); err != nil {
		return nil, wrapErr(err, "loading ticket responses")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	responses := make([]ticket.Response, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, row.response())
	}
	return responses, nil
}

func (repo *ticketRepository) NextTicketNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := repo.db.GetContext(ctx, &seq, `SELECT nextval('ticket_number_seq')`); err != nil {
		return "", wrapErr(err, "allocating ticket number")
	}
	return fmt.Sprintf("TCK-%05d", seq), nil
}

func (repo *ticketRepository) CreateTicket(ctx context.Context, tck ticket.Ticket) (ticket.Ticket, error) {
	query := `
		INSERT INTO ticket (id, number, user_email, user_role, category, subject, description, priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.ExecContext(ctx, query,
		tck.ID, tck.Number, tck.UserEmail, tck.UserRole, tck.Category, tck.Subject,
		tck.Description, tck.Priority, tck.Status, tck.CreatedAt, tck.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ticket.Ticket{}, ticket.ErrNumberExists
		}
		return ticket.Ticket{}, wrapErr(err, "inserting ticket")
	}
	return tck, nil
}

func (repo *ticketRepository) GetTicketByID(ctx context.Context, id string) (ticket.Ticket, error) {
	var row ticketRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM ticket WHERE id = $1`, id); err != nil {
		return ticket.Ticket{}, repo.trapNoRowsErr(err, "finding ticket by ID")
	}
	responses, err := repo.responses(ctx, id)
	if err != nil {
		return ticket.Ticket{}, err
	}
	return row.ticket(responses), nil
}

func (repo *ticketRepository) GetTicketByNumber(ctx context.Context, number string) (ticket.Ticket, error) {
	var row ticketRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM ticket WHERE number = $1`, number); err != nil {
		return ticket.Ticket{}, repo.trapNoRowsErr(err, "finding ticket by number")
	}
	responses, err := repo.responses(ctx, row.ID)
	if err != nil {
		return ticket.Ticket{}, err
	}
	return row.ticket(responses), nil
}

func (repo *ticketRepository) QueryAllTickets(ctx context.Context) ([]ticket.Ticket, error) {
	var rows []ticketRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM ticket ORDER BY created_at DESC`); err != nil {
		return nil, wrapErr(err, "querying tickets")
	}

	tickets := make([]ticket.Ticket, 0, len(rows))
	for _, row := range rows {
		responses, err := repo.responses(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, row.ticket(responses))
	}
	return tickets, nil
}

func (repo *ticketRepository) UpdateTicket(ctx context.Context, tck ticket.Ticket) (ticket.Ticket, error) {
	query := `
		UPDATE ticket
		SET category = $2, subject = $3, description = $4, priority = $5, status = $6, updated_at = $7
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		tck.ID, tck.Category, tck.Subject, tck.Description, tck.Priority, tck.Status, tck.UpdatedAt)
	if err != nil {
		return ticket.Ticket{}, wrapErr(err, "updating ticket")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	return tck, nil
}

func (repo *ticketRepository) AppendResponse(ctx context.Context, ticketID string, res ticket.Response) (ticket.Ticket, error) {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ticket_response (id, ticket_id, author_role, message, at) VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.ExecContext(ctx, query, res.ID, ticketID, res.AuthorRole, res.Message, res.At); err != nil {
			return wrapErr(err, "inserting ticket response")
		}
		result, err := tx.ExecContext(ctx, `UPDATE ticket SET updated_at = $2 WHERE id = $1`, ticketID, res.At)
		if err != nil {
			return wrapErr(err, "updating ticket")
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return ticket.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return ticket.Ticket{}, err
	}
	return repo.GetTicketByID(ctx, ticketID)
}
