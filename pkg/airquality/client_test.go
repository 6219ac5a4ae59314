package airquality

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/ecocampus-app/ecocampus-backend/pkg/config"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClientCurrentReading(t *testing.T) {
	aqiBody := `{"current":{"us_aqi":87,"pm2_5":24.5,"pm10":51.0}}`
	geoBody := `{"city":"Chennai","locality":"Guindy"}`

	var aqiURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body := geoBody
		if strings.Contains(req.URL.Path, "air-quality") {
			aqiURL = req.URL.String()
			body = aqiBody
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(config.AirQualityConfig{
		AQIBaseURL:     "http://aqi.test/v1",
		GeocodeBaseURL: "http://geo.test/data",
	}, WithHTTPClient(&http.Client{Transport: rt}))

	reading, err := client.CurrentReading(context.Background(), 13.0067, 80.2206)
	if err != nil {
		t.Fatalf("current reading: %v", err)
	}
	if !strings.Contains(aqiURL, "current=us_aqi%2Cpm2_5%2Cpm10") {
		t.Fatalf("unexpected aqi URL %q", aqiURL)
	}
	if reading.AQI != 87 {
		t.Fatalf("unexpected aqi %d", reading.AQI)
	}
	if reading.PM25 != 24.5 || reading.PM10 != 51.0 {
		t.Fatalf("unexpected particulates %+v", reading)
	}
	if reading.Locality != "Chennai" {
		t.Fatalf("unexpected locality %q", reading.Locality)
	}
}

func TestClientCurrentReadingGeocodeFailureIsNotFatal(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if strings.Contains(req.URL.Path, "air-quality") {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"current":{"us_aqi":42,"pm2_5":8.1,"pm10":20.3}}`)),
				Header:     http.Header{},
			}, nil
		}
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(strings.NewReader("boom")),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(config.AirQualityConfig{}, WithHTTPClient(&http.Client{Transport: rt}))

	reading, err := client.CurrentReading(context.Background(), 13.0, 80.2)
	if err != nil {
		t.Fatalf("current reading: %v", err)
	}
	if reading.AQI != 42 {
		t.Fatalf("unexpected aqi %d", reading.AQI)
	}
	if reading.Locality != "" {
		t.Fatalf("expected empty locality, got %q", reading.Locality)
	}
}

func TestClientCurrentReadingUpstreamError(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(strings.NewReader("upstream down")),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(config.AirQualityConfig{}, WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.CurrentReading(context.Background(), 13.0, 80.2)
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestClientCurrentReadingRejectsBadCoordinates(t *testing.T) {
	client := NewClient(config.AirQualityConfig{})

	_, err := client.CurrentReading(context.Background(), 120.0, 80.2)
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
