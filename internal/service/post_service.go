package service

import (
	"unicode/utf8"

	"github.com/evyataryagoni/locationserver/internal/logger"
	"github.com/evyataryagoni/locationserver/internal/metrics"
)

// PostService accepts arbitrary POST bodies and writes them to the log.
// Bodies are never parsed or stored.
type PostService struct {
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewPostService creates a post service. m and log may be nil.
func NewPostService(m *metrics.Metrics, log *logger.Logger) *PostService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &PostService{
		metrics: m,
		logger:  log.WithComponent("PostService"),
	}
}

// ReceivedPrefix starts the log message for every accepted POST body
const ReceivedPrefix = "Received POST data:"

// Receive decodes body as UTF-8 text and logs it on the line after
// ReceivedPrefix. The text is the message itself, so console output prints it
// unquoted. Invalid UTF-8 returns ErrInvalidUTF8 and nothing is logged as
// received.
func (s *PostService) Receive(path string, body []byte) (string, error) {
	if !utf8.Valid(body) {
		s.Fault("invalid_utf8", ErrInvalidUTF8)
		return "", ErrInvalidUTF8
	}

	data := string(body)
	s.logger.Info().
		Str("path", path).
		Int("bytes", len(body)).
		Msg(ReceivedPrefix + "\n" + data)

	if s.metrics != nil {
		s.metrics.PostBodiesTotal.Inc()
		s.metrics.PostBodyBytes.Observe(float64(len(body)))
	}

	return data, nil
}

// Fault records a POST that was aborted before its body could be accepted
func (s *PostService) Fault(reason string, err error) {
	s.logger.Error().Err(err).Str("reason", reason).Msg("Malformed POST request")
	if s.metrics != nil {
		s.metrics.PostFaultsTotal.WithLabelValues(reason).Inc()
	}
}
