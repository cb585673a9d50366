package ticket_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/ticket"
	emailsvc "github.com/tkabange/uangalizi/services/email"
	inmemdb "github.com/tkabange/uangalizi/storage/database/inmem"
)

func setup(t *testing.T) *ticket.Service {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	conf := &core.Config{AppName: "Uangalizi"}
	return ticket.NewService(inmemdb.NewTicketRepository(db), emailsvc.NewConsoleServiceMock(conf), conf)
}

func create(t *testing.T, svc *ticket.Service, number string) ticket.Ticket {
	tck, err := svc.Create(context.Background(), ticket.NewTicket{
		Number:      number,
		UserEmail:   "neema@test.cd",
		UserRole:    "guardian",
		Category:    "billing",
		Subject:     "Invoice question",
		Description: "My March invoice looks off.",
		Priority:    ticket.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return tck
}

func TestService_Create(t *testing.T) {
	svc := setup(t)

	t.Run("numbers are sequential", func(t *testing.T) {
		tck1 := create(t, svc, "")
		tck2 := create(t, svc, "")
		if tck1.Number == tck2.Number {
			t.Errorf("expected distinct numbers, both = %q", tck1.Number)
		}
		if tck1.Status != ticket.StatusOpen {
			t.Errorf("Create() Status = %v; want %v", tck1.Status, ticket.StatusOpen)
		}
		if tck1.Responses == nil || len(tck1.Responses) != 0 {
			t.Errorf("Create() Responses = %v; want empty", tck1.Responses)
		}
	})

	t.Run("retry with same number returns existing ticket", func(t *testing.T) {
		tck := create(t, svc, "TCK-90001")
		again := create(t, svc, "TCK-90001")
		if again.ID != tck.ID {
			t.Errorf("Create() retry ID = %v; want %v", again.ID, tck.ID)
		}
	})
}

func TestService_UpdateStatus(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		moves []ticket.Status
	}{
		{name: "forward lifecycle", moves: []ticket.Status{ticket.StatusInProgress, ticket.StatusResolved, ticket.StatusClosed}},
		{name: "jump open>closed", moves: []ticket.Status{ticket.StatusClosed}},
		{name: "reopen closed", moves: []ticket.Status{ticket.StatusClosed, ticket.StatusOpen}},
		{name: "backward resolved>in_progress", moves: []ticket.Status{ticket.StatusResolved, ticket.StatusInProgress}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tck := create(t, svc, "")
			var err error
			for _, status := range tt.moves {
				tck, err = svc.UpdateStatus(ctx, tck.ID, status)
			}
			if err != nil {
				t.Fatalf("UpdateStatus() failed: %v", err)
			}
			if tck.Status != tt.moves[len(tt.moves)-1] {
				t.Errorf("UpdateStatus() Status = %v; want %v", tck.Status, tt.moves[len(tt.moves)-1])
			}
		})
	}

	t.Run("repeating the current status is rejected", func(t *testing.T) {
		tck := create(t, svc, "")
		if _, err := svc.UpdateStatus(ctx, tck.ID, ticket.StatusOpen); !core.IsTransition(err) {
			t.Errorf("UpdateStatus() error = %v; want TransitionError", err)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		tck := create(t, svc, "")
		if _, err := svc.UpdateStatus(ctx, tck.ID, ticket.Status("lol")); !core.IsValidation(err) {
			t.Errorf("UpdateStatus() error = %v; want ValidationError", err)
		}
	})

	t.Run("unknown ticket", func(t *testing.T) {
		if _, err := svc.UpdateStatus(ctx, "lol", ticket.StatusClosed); err != ticket.ErrNotFound {
			t.Errorf("UpdateStatus() error = %v; want %v", err, ticket.ErrNotFound)
		}
	})
}

func TestService_Reply(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tck := create(t, svc, "")

	for i := 0; i < 3; i++ {
		var err error
		tck, err = svc.Reply(ctx, tck.ID, ticket.NewReply{
			AuthorRole: "admin",
			Message:    fmt.Sprintf("reply %d", i),
		})
		if err != nil {
			t.Fatalf("Reply() failed: %v", err)
		}
	}
	if len(tck.Responses) != 3 {
		t.Fatalf("Reply() stored %d responses; want 3", len(tck.Responses))
	}
	// the thread is append-only and ordered
	for i, res := range tck.Responses {
		if want := fmt.Sprintf("reply %d", i); res.Message != want {
			t.Errorf("Responses[%d].Message = %q; want %q", i, res.Message, want)
		}
	}
	// replying never alters the status
	if tck.Status != ticket.StatusOpen {
		t.Errorf("Reply() Status = %v; want %v", tck.Status, ticket.StatusOpen)
	}

	if _, err := svc.Reply(ctx, "lol", ticket.NewReply{AuthorRole: "admin", Message: "x"}); err != ticket.ErrNotFound {
		t.Errorf("Reply() error = %v; want %v", err, ticket.ErrNotFound)
	}
}

func TestService_ByStatus(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tck1 := create(t, svc, "")
	tck2 := create(t, svc, "")
	if _, err := svc.UpdateStatus(ctx, tck2.ID, ticket.StatusResolved); err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}

	grouped, err := svc.ByStatus(ctx)
	if err != nil {
		t.Fatalf("ByStatus() failed: %v", err)
	}
	// every status key is present even when empty
	for _, st := range ticket.AllStatuses {
		if _, ok := grouped[st]; !ok {
			t.Errorf("ByStatus() missing key %q", st)
		}
	}
	if len(grouped[ticket.StatusOpen]) != 1 || grouped[ticket.StatusOpen][0].ID != tck1.ID {
		t.Errorf("ByStatus()[open] = %v; want [%v]", grouped[ticket.StatusOpen], tck1.ID)
	}
	if len(grouped[ticket.StatusResolved]) != 1 {
		t.Errorf("ByStatus()[resolved] = %v; want one ticket", grouped[ticket.StatusResolved])
	}
}
