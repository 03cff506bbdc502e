package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

// CronHandler exposes the sweeper to external schedulers. Routes sit behind CronSecret.
type CronHandler interface {
	AutoCheckout(w http.ResponseWriter, r *http.Request)
	CloseStale(w http.ResponseWriter, r *http.Request)
}

type cronHandlerImpl struct {
	sweeper attendance.Sweeper
	now     func() time.Time
}

func NewCronHandler(sweeper attendance.Sweeper) CronHandler {
	return &cronHandlerImpl{
		sweeper: sweeper,
		now:     time.Now,
	}
}

type CronResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   int    `json:"count"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
}

func (h *cronHandlerImpl) AutoCheckout(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.sweeper.Sweep, "Auto checkout completed", "Auto checkout failed")
}

func (h *cronHandlerImpl) CloseStale(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.sweeper.SweepStale, "Stale sessions closed", "Closing stale sessions failed")
}

func (h *cronHandlerImpl) run(
	w http.ResponseWriter,
	r *http.Request,
	sweep func(ctx context.Context, asOf time.Time) (attendance.SweepResult, error),
	okMessage, failMessage string,
) {
	result, err := sweep(r.Context(), h.now())
	if err != nil {
		slog.Error(failMessage, "error", err)
		response.JSON(w, http.StatusInternalServerError, CronResponse{OK: false, Error: failMessage})
		return
	}

	response.JSON(w, http.StatusOK, CronResponse{
		OK:      true,
		Message: okMessage,
		Count:   result.ClosedCount,
		Failed:  result.FailedCount,
		Skipped: result.SkippedCount,
	})
}
