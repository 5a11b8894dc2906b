package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/aprendecomigo-edu/aprendecomigo-sub004/api"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/internal/schedule"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/response"
	"github.com/aprendecomigo-edu/aprendecomigo-sub004/pkg/sl"
)

type BookingCanceller interface {
	Cancel(ctx context.Context, bookingID string, req *api.TransitionRequest) (*api.BookingResponse, error)
}

type Request struct {
	api.TransitionRequest
}

type Response struct {
	response.Response
	Booking api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, svc BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.cancel.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if req.ActorID == "" {
			log.Error("actor_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "actor_id is required"))
			return
		}

		booking, err := svc.Cancel(r.Context(), id, &req.TransitionRequest)

		var transitionErr *schedule.TransitionError
		if errors.As(err, &transitionErr) {
			log.Error("Illegal transition", sl.Err(transitionErr))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.INVALID_TRANSITION), transitionErr.Error()))
			return
		}

		var permissionErr *schedule.PermissionError
		if errors.As(err, &permissionErr) {
			log.Error("Permission denied", sl.Err(permissionErr))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(string(response.FORBIDDEN), permissionErr.Error()))
			return
		}

		var failure schedule.Failure
		if errors.As(err, &failure) {
			log.Error("Transition rejected", sl.Err(failure))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(string(response.VALIDATION_FAILED), failure.Message))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if errors.Is(err, response.ErrVersionConflict) {
			log.Error("booking was modified concurrently")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "booking was modified concurrently, re-fetch and retry"))
			return
		}

		if err != nil {
			log.Error("Failed to cancel booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to cancel booking"))
			return
		}

		log.Info("Booking cancelled", slog.String("booking_id", booking.ID))
		responseOK(w, r, booking)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, booking *api.BookingResponse) {
	render.JSON(w, r, Response{
		Booking: *booking,
	})
}
