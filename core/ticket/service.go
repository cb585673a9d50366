package ticket

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/tkabange/uangalizi/core"
)

var (
	// errors
	ErrNotFound     = errors.New("ticket not found")
	ErrNumberExists = errors.New("a ticket with this number already exists")
)

type (
	Repository interface {
		// NextTicketNumber allocates the next sequential human-readable number
		// (e.g. "TCK-00042").
		NextTicketNumber(ctx context.Context) (string, error)
		CreateTicket(ctx context.Context, tck Ticket) (Ticket, error)
		GetTicketByID(ctx context.Context, id string) (Ticket, error)
		GetTicketByNumber(ctx context.Context, number string) (Ticket, error)
		QueryAllTickets(ctx context.Context) ([]Ticket, error)
		UpdateTicket(ctx context.Context, tck Ticket) (Ticket, error)
		// AppendResponse appends to the ordered response log without touching
		// the ticket status.
		AppendResponse(ctx context.Context, ticketID string, res Response) (Ticket, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

// Create opens a support ticket. When the caller supplied a number and a
// ticket with that number already exists, the existing ticket is returned
// unchanged, making retries of the same submission safe.
func (svc *Service) Create(ctx context.Context, nt NewTicket) (Ticket, error) {
	number := nt.Number
	if number != "" {
		if existing, err := svc.repo.GetTicketByNumber(ctx, number); err == nil {
			return existing, nil
		} else if err != ErrNotFound {
			return Ticket{}, err
		}
	} else {
		var err error
		if number, err = svc.repo.NextTicketNumber(ctx); err != nil {
			return Ticket{}, err
		}
	}

	now := time.Now().UTC()
	tck := Ticket{
		ID:          uuid.New().String(),
		Number:      number,
		UserEmail:   nt.UserEmail,
		UserRole:    nt.UserRole,
		Category:    nt.Category,
		Subject:     nt.Subject,
		Description: nt.Description,
		Priority:    nt.Priority,
		Status:      StatusOpen,
		Responses:   []Response{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateTicket(ctx, tck)
}

// UpdateStatus sets a ticket's status. Jumps outside the default forward
// order are permitted for administrators; repeating the current status is
// rejected so duplicate submissions stay detectable.
func (svc *Service) UpdateStatus(ctx context.Context, id string, status Status) (Ticket, error) {
	if !status.Valid() {
		return Ticket{}, core.NewValidationError(
			errors.New("invalid status"),
			core.FieldError{Field: "status", Error: "must be one of: open, in_progress, resolved, closed"},
		)
	}

	tck, err := svc.repo.GetTicketByID(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if !CanTransition(tck.Status, status) {
		return Ticket{}, core.NewTransitionError("ticket", string(tck.Status), string(status))
	}

	tck.Status = status
	tck.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTicket(ctx, tck)
}

// Reply appends a response to the ticket thread and notifies the ticket
// owner. The ticket status is left untouched.
func (svc *Service) Reply(ctx context.Context, id string, nr NewReply) (Ticket, error) {
	res := Response{
		ID:         uuid.New().String(),
		AuthorRole: nr.AuthorRole,
		Message:    nr.Message,
		At:         time.Now().UTC(),
	}
	tck, err := svc.repo.AppendResponse(ctx, id, res)
	if err != nil {
		return Ticket{}, err
	}

	if nr.AuthorRole != tck.UserRole {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Address: tck.UserEmail}},
			Subject: fmt.Sprintf("New reply on ticket %s", tck.Number),
			Body: fmt.Sprintf(
				"Your support ticket %s (%s) has a new reply:\r\n\r\n%s\r\n",
				tck.Number, tck.Subject, nr.Message,
			),
		})
	}
	return tck, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Ticket, error) {
	return svc.repo.GetTicketByID(ctx, id)
}

// ByStatus groups all tickets by their current status; every status key is
// present even when empty.
func (svc *Service) ByStatus(ctx context.Context) (map[Status][]Ticket, error) {
	tickets, err := svc.repo.QueryAllTickets(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[Status][]Ticket, len(AllStatuses))
	for _, st := range AllStatuses {
		grouped[st] = []Ticket{}
	}
	for _, tck := range tickets {
		grouped[tck.Status] = append(grouped[tck.Status], tck)
	}
	return grouped, nil
}
