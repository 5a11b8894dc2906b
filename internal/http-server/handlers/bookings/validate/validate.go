package validate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/api"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/schedule"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/response"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/sl"
)

type BookingValidator interface {
	Validate(ctx context.Context, req *api.BookingRequest) (*schedule.ValidationResult, error)
}

type Request struct {
	api.BookingRequest
}

type Response struct {
	response.Response
	Validation *api.ValidationResponse `json:"validation,omitempty"`
}

// New returns the dry-run validation handler: it reports every problem the
// booking request would hit, without creating anything.
func New(log *slog.Logger, validator BookingValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.validate.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if req.TeacherID == "" || req.StudentID == "" || req.SchoolID == "" {
			log.Error("teacher_id, student_id and school_id are required")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "teacher_id, student_id and school_id are required"))
			return
		}

		result, err := validator.Validate(r.Context(), &req.BookingRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to validate booking request", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to validate booking request"))
			return
		}

		log.Info("Booking request validated",
			slog.Bool("ok", result.OK),
			slog.Int("failures", len(result.Failures)),
		)

		validation := &api.ValidationResponse{OK: result.OK}
		for _, f := range result.Failures {
			validation.Failures = append(validation.Failures, api.ValidationFailure{
				Code:    string(f.Code),
				Message: f.Message,
			})
		}

		render.JSON(w, r, Response{Validation: validation})
	}
}
