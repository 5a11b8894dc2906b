package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/api"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/response"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/sl"
)

type SlotLister interface {
	AvailableSlots(ctx context.Context, teacherID string, schoolIDs []string, from, to time.Time, durationMinutes int) ([]api.SlotResponse, error)
}

type Response struct {
	response.Response
	Slots []api.SlotResponse `json:"slots"`
}

// New lists every bookable slot for a teacher over a date range:
// GET /slots?teacher_id=&school_ids=a,b&from=2006-01-02&to=2006-01-02&duration_minutes=60
func New(log *slog.Logger, lister SlotLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()

		teacherID := q.Get("teacher_id")
		if teacherID == "" {
			log.Error("teacher_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "teacher_id is required"))
			return
		}

		schoolIDs := strings.Split(q.Get("school_ids"), ",")
		if len(schoolIDs) == 1 && schoolIDs[0] == "" {
			log.Error("school_ids is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "school_ids is required"))
			return
		}

		from, err := time.Parse("2006-01-02", q.Get("from"))
		if err != nil {
			log.Error("invalid from date", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "from must be YYYY-MM-DD"))
			return
		}

		to, err := time.Parse("2006-01-02", q.Get("to"))
		if err != nil {
			log.Error("invalid to date", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "to must be YYYY-MM-DD"))
			return
		}

		duration, err := strconv.Atoi(q.Get("duration_minutes"))
		if err != nil || duration <= 0 {
			log.Error("invalid duration_minutes")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "duration_minutes must be a positive integer"))
			return
		}

		slots, err := lister.AvailableSlots(r.Context(), teacherID, schoolIDs, from, to, duration)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to list slots", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list slots"))
			return
		}

		log.Info("Slots listed", slog.Int("count", len(slots)))

		render.JSON(w, r, Response{Slots: slots})
	}
}
