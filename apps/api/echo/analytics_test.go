package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/analytics"
	inmemdb "github.com/tkabange/uangalizi/storage/database/inmem"
)

func Test_analyticsApi_overview(t *testing.T) {
	db, _ := setup(t)
	api := &analyticsApi{
		svc: analytics.NewService(
			inmemdb.NewSessionRepository(db),
			inmemdb.NewStudentRepository(db),
			inmemdb.NewPrincipalRepository(db),
		),
	}
	e := echo.New()

	t.Run("default window", func(t *testing.T) {
		ctx, rec := newRequest(e, http.MethodGet, "/analytics/overview")
		if err := api.overview(ctx); err != nil {
			t.Fatalf("overview() error = %v", err)
		}
		var got analytics.Overview
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if got.WindowDays != defaultOverviewWindowDays {
			t.Errorf("overview() WindowDays = %d; want %d", got.WindowDays, defaultOverviewWindowDays)
		}
	})

	t.Run("days param", func(t *testing.T) {
		ctx, rec := newRequest(e, http.MethodGet, "/analytics/overview?days=7")
		if err := api.overview(ctx); err != nil {
			t.Fatalf("overview() error = %v", err)
		}
		var got analytics.Overview
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if got.WindowDays != 7 {
			t.Errorf("overview() WindowDays = %d; want 7", got.WindowDays)
		}
	})

	t.Run("non-numeric days", func(t *testing.T) {
		ctx, _ := newRequest(e, http.MethodGet, "/analytics/overview?days=lol")
		err := api.overview(ctx)
		httpErr, ok := err.(*echo.HTTPError)
		if !ok || httpErr.Code != http.StatusBadRequest {
			t.Errorf("overview() error = %v; want 400", err)
		}
	})

	t.Run("non-positive window", func(t *testing.T) {
		ctx, _ := newRequest(e, http.MethodGet, "/analytics/overview?days=0")
		if err := api.overview(ctx); !core.IsValidation(err) {
			t.Errorf("overview() error = %v; want ValidationError", err)
		}
	})
}
