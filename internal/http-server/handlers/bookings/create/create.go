package create

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

type BookingCreator interface {
	Create(ctx context.Context, req *api.BookingRequest) (*api.BookingResponse, error)
}

type Request struct {
	api.BookingRequest
}

type Response struct {
	response.Response
	Booking    *api.BookingResponse    `json:"booking,omitempty"`
	Validation *api.ValidationResponse `json:"validation,omitempty"`
}

func New(log *slog.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.create.New"

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

		log.Info("Request body decoded", slog.Any("request", req))

		if req.TeacherID == "" || req.StudentID == "" || req.SchoolID == "" {
			log.Error("teacher_id, student_id and school_id are required")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "teacher_id, student_id and school_id are required"))
			return
		}

		booking, err := creator.Create(r.Context(), &req.BookingRequest)

		var result *schedule.ValidationResult
		if errors.As(err, &result) {
			log.Info("Booking request failed validation", slog.Int("failures", len(result.Failures)))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, Response{
				Response:   response.Error(string(response.VALIDATION_FAILED), result.Error()),
				Validation: toValidationResponse(result),
			})
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("schedule is locked")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "schedule is locked, retry shortly"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if errors.Is(err, response.ErrVersionConflict) || errors.Is(err, response.ErrConflict) {
			log.Error("booking conflicted with a concurrent write")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "booking conflicted with a concurrent write, retry"))
			return
		}

		if err != nil {
			log.Error("Failed to create booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create booking"))
			return
		}

		log.Info("Booking created",
			slog.String("booking_id", booking.ID),
			slog.String("action", booking.Action),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Booking: booking})
	}
}

func toValidationResponse(result *schedule.ValidationResult) *api.ValidationResponse {
	resp := &api.ValidationResponse{OK: result.OK}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, api.ValidationFailure{
			Code:    string(f.Code),
			Message: f.Message,
		})
	}
	return resp
}
