package controllers

import (
	"net/http"

	"github.com/ecocampus-app/ecocampus-backend/api/responses"
	"github.com/ecocampus-app/ecocampus-backend/internal/challenges"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
)

// ChallengeList returns active challenges with the caller's completion state.
func ChallengeList(svc challenges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		views, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// ChallengeSubmit accepts a multipart photo proof for a challenge.
func ChallengeSubmit(svc challenges.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		challengeID, err := pathUUID(r, "challengeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if maxUploadMB <= 0 {
			maxUploadMB = 10
		}
		maxBytes := int64(maxUploadMB) << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("photo")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "photo file is required"))
			return
		}
		defer file.Close()

		result, err := svc.Submit(r.Context(), challenges.SubmitInput{
			UserID:      userID,
			ChallengeID: challengeID,
			Filename:    header.Filename,
			Photo:       file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
