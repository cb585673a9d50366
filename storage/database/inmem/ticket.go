package inmemdb

import (
	"context"
	"fmt"
	"time"

	"github.com/tkabange/uangalizi/core/ticket"
)

type ticketRepository struct {
	db *DB
}

var _ ticket.Repository = (*ticketRepository)(nil)

func NewTicketRepository(db *DB) *ticketRepository {
	return &ticketRepository{db: db}
}

func (repo *ticketRepository) NextTicketNumber(ctx context.Context) (string, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.ticketSeq++
	return fmt.Sprintf("TCK-%05d", repo.db.ticketSeq), nil
}

func (repo *ticketRepository) CreateTicket(ctx context.Context, tck ticket.Ticket) (ticket.Ticket, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.tickets {
		if existing.Number == tck.Number {
			return ticket.Ticket{}, ticket.ErrNumberExists
		}
	}
	tck.Responses = copyResponses(tck.Responses)
	repo.db.tickets[tck.ID] = &tck
	return copyTicket(tck), nil
}

func (repo *ticketRepository) GetTicketByID(ctx context.Context, id string) (ticket.Ticket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tck, ok := repo.db.tickets[id]; ok {
		return copyTicket(*tck), nil
	}
	return ticket.Ticket{}, ticket.ErrNotFound
}

func (repo *ticketRepository) GetTicketByNumber(ctx context.Context, number string) (ticket.Ticket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, tck := range repo.db.tickets {
		if tck.Number == number {
			return copyTicket(*tck), nil
		}
	}
	return ticket.Ticket{}, ticket.ErrNotFound
}

func (repo *ticketRepository) QueryAllTickets(ctx context.Context) ([]ticket.Ticket, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tickets := make([]ticket.Ticket, 0, len(repo.db.tickets))
	for _, tck := range repo.db.tickets {
		tickets = append(tickets, copyTicket(*tck))
	}
	return tickets, nil
}

func (repo *ticketRepository) UpdateTicket(ctx context.Context, tck ticket.Ticket) (ticket.Ticket, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.tickets[tck.ID]; !ok {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	tck.Responses = copyResponses(tck.Responses)
	repo.db.tickets[tck.ID] = &tck
	return copyTicket(tck), nil
}

func (repo *ticketRepository) AppendResponse(ctx context.Context, ticketID string, res ticket.Response) (ticket.Ticket, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tck, ok := repo.db.tickets[ticketID]
	if !ok {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	tck.Responses = append(tck.Responses, res)
	tck.UpdatedAt = time.Now().UTC()
	return copyTicket(*tck), nil
}

func copyTicket(tck ticket.Ticket) ticket.Ticket {
	tck.Responses = copyResponses(tck.Responses)
	return tck
}

func copyResponses(responses []ticket.Response) []ticket.Response {
	if responses == nil {
		return nil
	}
	out := make([]ticket.Response, len(responses))
	copy(out, responses)
	return out
}
