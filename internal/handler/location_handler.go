package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/evyataryagoni/locationserver/internal/service"
)

// Plain-text bodies of the public surface
const (
	NotFoundBody     = "Not Found"
	PostReceivedBody = "POST request received"
)

// LocationHandler handles HTTP requests on the public listener.
// It deals with HTTP concerns only; lookups and body handling live in the
// service layer.
type LocationHandler struct {
	locations *service.LocationService
	posts     *service.PostService
}

// NewLocationHandler creates a handler backed by the given services
func NewLocationHandler(locations *service.LocationService, posts *service.PostService) *LocationHandler {
	return &LocationHandler{
		locations: locations,
		posts:     posts,
	}
}

// GetLocation handles GET /location
// @Summary      City of this host
// @Description  Looks up this host's public IP location upstream and returns the city with spaces replaced by '+'
// @Tags         Location
// @Produce      plain
// @Success      200  {string}  string  "City, e.g. San+Francisco or UnknownLocation"
// @Failure      500  {string}  string  "Error fetching location (curl failed | JSON decode error | Unexpected error)"
// @Router       /location [get]
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	city, err := h.locations.LookupCity(r.Context())
	if err != nil {
		h.respondText(w, http.StatusInternalServerError, service.KindOf(err).Message())
		return
	}

	h.respondText(w, http.StatusOK, city)
}

// NotFound handles GET on every path other than /location
func (h *LocationHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.respondText(w, http.StatusNotFound, NotFoundBody)
}

// ReceivePost handles POST on any path
// @Summary      Accept a body
// @Description  Reads exactly Content-Length bytes, logs them as UTF-8 text and acknowledges
// @Tags         Ingest
// @Accept       plain
// @Produce      plain
// @Param        body  body      string  true  "Arbitrary UTF-8 text"
// @Success      200   {string}  string  "POST request received"
// @Failure      500   {string}  string  "Malformed request (missing Content-Length or invalid UTF-8)"
// @Router       / [post]
func (h *LocationHandler) ReceivePost(w http.ResponseWriter, r *http.Request) {
	declared := r.Header.Get("Content-Length")
	length, err := strconv.ParseInt(declared, 10, 64)
	if err != nil || length < 0 {
		h.posts.Fault("content_length", fmt.Errorf("invalid Content-Length %q", declared))
		h.abort(w)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, length))
	if err == nil && int64(len(body)) < length {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		h.posts.Fault("short_body", fmt.Errorf("read body: %w", err))
		h.abort(w)
		return
	}

	if _, err := h.posts.Receive(r.URL.Path, body); err != nil {
		h.abort(w)
		return
	}

	h.respondText(w, http.StatusOK, PostReceivedBody)
}

// Unsupported handles every method other than GET and POST
func (h *LocationHandler) Unsupported(w http.ResponseWriter, r *http.Request) {
	h.respondText(w, http.StatusNotImplemented, fmt.Sprintf("Unsupported method ('%s')", r.Method))
}

// respondText writes a plain-text response with the given status code
func (h *LocationHandler) respondText(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(statusCode)
	io.WriteString(w, body)
}

// abort ends a malformed request with a generic server fault and drops the
// connection. No domain-specific message is given.
func (h *LocationHandler) abort(w http.ResponseWriter) {
	w.Header().Set("Connection", "close")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
