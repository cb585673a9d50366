package inquiry_test

import (
	"context"
	"testing"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/inquiry"
	inmemdb "github.com/tkabange/uangalizi/storage/database/inmem"
)

func setup(t *testing.T) *inquiry.Service {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return inquiry.NewService(inmemdb.NewInquiryRepository(db))
}

func submit(t *testing.T, svc *inquiry.Service) inquiry.Inquiry {
	inq, err := svc.Submit(context.Background(), inquiry.NewInquiry{
		ParentName: "Neema M",
		Email:      "neema@test.cd",
		Phone:      "+243812345678",
		ChildName:  "Amani",
		ChildAge:   7,
		Message:    "Interested in weekly observation",
	})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	return inq
}

func TestService_Submit(t *testing.T) {
	svc := setup(t)

	inq := submit(t, svc)
	if inq.Status != inquiry.StatusNew {
		t.Errorf("Submit() Status = %v; want %v", inq.Status, inquiry.StatusNew)
	}
	if inq.ID == "" {
		t.Error("Submit() expected a generated ID")
	}

	got, err := svc.GetByID(context.Background(), inq.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.ParentName != inq.ParentName {
		t.Errorf("GetByID() ParentName = %v; want %v", got.ParentName, inq.ParentName)
	}
}

func TestService_UpdateStatus(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		moves   []inquiry.Status
		notes   string
		wantErr bool
	}{
		{name: "forward new>contacted>enrolled", moves: []inquiry.Status{inquiry.StatusContacted, inquiry.StatusEnrolled}},
		{name: "backward enrolled>contacted", moves: []inquiry.Status{inquiry.StatusContacted, inquiry.StatusEnrolled, inquiry.StatusContacted}},
		{name: "skip to closed", moves: []inquiry.Status{inquiry.StatusClosed}},
		{name: "reopen closed", moves: []inquiry.Status{inquiry.StatusClosed, inquiry.StatusNew}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inq := submit(t, svc)
			var err error
			for _, status := range tt.moves {
				inq, err = svc.UpdateStatus(ctx, inq.ID, status, "moving along")
			}
			if tt.wantErr {
				if err == nil {
					t.Error("UpdateStatus() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus() failed: %v", err)
			}
			if inq.Status != tt.moves[len(tt.moves)-1] {
				t.Errorf("UpdateStatus() Status = %v; want %v", inq.Status, tt.moves[len(tt.moves)-1])
			}
			if inq.Notes != "moving along" {
				t.Errorf("UpdateStatus() Notes = %q; want %q", inq.Notes, "moving along")
			}
		})
	}

	t.Run("same status with notes is allowed", func(t *testing.T) {
		inq := submit(t, svc)
		got, err := svc.UpdateStatus(ctx, inq.ID, inquiry.StatusNew, "called, no answer")
		if err != nil {
			t.Fatalf("UpdateStatus() failed: %v", err)
		}
		if got.Notes != "called, no answer" {
			t.Errorf("UpdateStatus() Notes = %q", got.Notes)
		}
	})

	t.Run("same status without notes is rejected", func(t *testing.T) {
		inq := submit(t, svc)
		if _, err := svc.UpdateStatus(ctx, inq.ID, inquiry.StatusNew, ""); !core.IsTransition(err) {
			t.Errorf("UpdateStatus() error = %v; want TransitionError", err)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		inq := submit(t, svc)
		if _, err := svc.UpdateStatus(ctx, inq.ID, inquiry.Status("lol"), "x"); !core.IsValidation(err) {
			t.Errorf("UpdateStatus() error = %v; want ValidationError", err)
		}
	})

	t.Run("unknown inquiry", func(t *testing.T) {
		if _, err := svc.UpdateStatus(ctx, "lol", inquiry.StatusClosed, "x"); err != inquiry.ErrNotFound {
			t.Errorf("UpdateStatus() error = %v; want %v", err, inquiry.ErrNotFound)
		}
	})
}

func TestService_Filter(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	inq1 := submit(t, svc)
	inq2 := submit(t, svc)
	if _, err := svc.UpdateStatus(ctx, inq2.ID, inquiry.StatusContacted, "left a voicemail"); err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}

	got, err := svc.Filter(ctx, inquiry.QueryFilter{Status: inquiry.StatusNew})
	if err != nil {
		t.Fatalf("Filter() failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != inq1.ID {
		t.Errorf("Filter(new) = %v; want [%v]", got, inq1.ID)
	}

	got, err = svc.Filter(ctx, inquiry.QueryFilter{Search: "amani"})
	if err != nil {
		t.Fatalf("Filter() failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Filter(search) returned %d inquiries; want 2", len(got))
	}
}
