package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/evyataryagoni/locationserver/internal/logger"
	"github.com/evyataryagoni/locationserver/internal/lookup"
	"github.com/evyataryagoni/locationserver/internal/metrics"
	"github.com/evyataryagoni/locationserver/internal/models"
)

// LocationService resolves the city this host appears to be in.
//
// Flow:
//  1. Fetch the geolocation document from the upstream
//  2. Parse it and pick out "city"
//  3. Format the city for the plain-text response
//
// Every failure comes back as a *LookupError tagged with a FailureKind.
type LocationService struct {
	client  lookup.Client
	metrics *metrics.Metrics // optional
	logger  *logger.Logger
}

// NewLocationService creates a location service.
// m and log may be nil.
func NewLocationService(client lookup.Client, m *metrics.Metrics, log *logger.Logger) *LocationService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &LocationService{
		client:  client,
		metrics: m,
		logger:  log.WithComponent("LocationService"),
	}
}

// LookupCity returns the formatted city name (spaces replaced by '+'),
// or a *LookupError
func (s *LocationService) LookupCity(ctx context.Context) (string, error) {
	start := time.Now()
	body, err := s.client.Fetch(ctx)
	s.observeUpstream(start, err)
	if err != nil {
		return "", s.fail(FailureTransport, err)
	}

	info, err := ParseLocation(body)
	if err != nil {
		return "", s.fail(KindOf(err), err)
	}

	if info.City == models.UnknownCity && s.metrics != nil {
		s.metrics.LocationUnknownTotal.Inc()
	}

	city := info.FormattedCity()
	s.logger.Debug().Str("city", info.City).Str("formatted", city).Msg("Location lookup successful")
	if s.metrics != nil {
		s.metrics.LocationLookupsTotal.WithLabelValues("success").Inc()
	}

	return city, nil
}

// ParseLocation extracts LocationInfo from an upstream JSON document.
// A missing "city" yields models.UnknownCity. A body that is not JSON is a
// FailureDecode; JSON that is not an object, or a non-string city, is a
// FailureUnexpected.
func ParseLocation(body []byte) (models.LocationInfo, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return models.LocationInfo{}, &LookupError{Kind: FailureDecode, Err: err}
	}

	fields, ok := doc.(map[string]any)
	if !ok {
		return models.LocationInfo{}, &LookupError{
			Kind: FailureUnexpected,
			Err:  fmt.Errorf("upstream document is %s, not an object", jsonKind(doc)),
		}
	}

	raw, present := fields["city"]
	if !present {
		return models.LocationInfo{City: models.UnknownCity}, nil
	}

	city, ok := raw.(string)
	if !ok {
		return models.LocationInfo{}, &LookupError{
			Kind: FailureUnexpected,
			Err:  fmt.Errorf("upstream city is %s, not a string", jsonKind(raw)),
		}
	}

	return models.LocationInfo{City: city}, nil
}

func (s *LocationService) fail(kind FailureKind, err error) error {
	s.logger.Error().Err(err).Str("failure", kind.String()).Msg(kind.logMessage())
	if s.metrics != nil {
		s.metrics.LocationLookupsTotal.WithLabelValues(kind.String()).Inc()
	}

	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr
	}
	return &LookupError{Kind: kind, Err: err}
}

func (s *LocationService) observeUpstream(start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.UpstreamRequestDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

// jsonKind names the JSON type of a value decoded into any
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case float64:
		return "a number"
	case string:
		return "a string"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
