package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecocampus-app/ecocampus-backend/api/responses"
	"github.com/ecocampus-app/ecocampus-backend/api/validators"
	"github.com/ecocampus-app/ecocampus-backend/internal/challenges"
	"github.com/ecocampus-app/ecocampus-backend/internal/events"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/qr"
)

type attendanceScanRequest struct {
	// QRPayload is the scanned profile code; UserID may be sent directly
	// by clients that already resolved the student.
	QRPayload string `json:"qr_payload" validate:"omitempty"`
	UserID    string `json:"user_id" validate:"omitempty,uuid"`
}

type submissionReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// AdminMarkAttendance confirms a student's presence at an event from a QR scan.
func AdminMarkAttendance(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		eventID, err := pathUUID(r, "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body attendanceScanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := resolveScannedUser(body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MarkAttended(r.Context(), events.MarkAttendedInput{
			EventID: eventID,
			UserID:  userID,
			AdminID: adminID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminReviewSubmission approves or rejects a pending challenge submission.
func AdminReviewSubmission(svc challenges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		submissionID, err := strconv.ParseInt(chi.URLParam(r, "submissionId"), 10, 64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid submission id"))
			return
		}

		var body submissionReviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		submission, err := svc.Review(r.Context(), challenges.ReviewInput{
			SubmissionID: submissionID,
			ReviewerID:   adminID,
			Status:       enums.SubmissionStatus(body.Status),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, submission)
	}
}

func resolveScannedUser(body attendanceScanRequest) (uuid.UUID, error) {
	if body.QRPayload != "" {
		userID, err := qr.ParseProfilePayload(body.QRPayload)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid qr payload")
		}
		return userID, nil
	}
	if body.UserID != "" {
		return parseUUIDField(body.UserID, "user_id")
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "qr_payload or user_id is required")
}
