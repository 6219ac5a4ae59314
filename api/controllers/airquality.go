package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/ecocampus-app/ecocampus-backend/api/responses"
	"github.com/ecocampus-app/ecocampus-backend/pkg/airquality"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
)

// AirQualityReader is the provider surface the endpoint needs.
type AirQualityReader interface {
	CurrentReading(ctx context.Context, lat, lon float64) (*airquality.Reading, error)
}

// AirQuality returns the AQI reading for the supplied coordinates.
func AirQuality(client AirQualityReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "air quality is not configured"))
			return
		}

		lat, err := parseCoordinate(r.URL.Query().Get("lat"), "lat")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lon, err := parseCoordinate(r.URL.Query().Get("lon"), "lon")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reading, err := client.CurrentReading(r.Context(), lat, lon)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reading)
	}
}

func parseCoordinate(raw, field string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "coordinate is required").WithDetails(map[string]any{"field": field})
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "coordinate must be numeric").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}
