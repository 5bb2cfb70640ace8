package api

import (
	"net/http"

	"github.com/utubapp/utub-server/internal/http/response"
)

// handleAddURL adds a URL to a UTub, creating the global URL row when the
// canonical string is new.
func (s *Server) handleAddURL(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	utubID, ok := pathID(r, "utubID")
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	body, err := bodyValues(r)
	if err != nil {
		s.badBody(w)
		return
	}

	view, created, err := s.urlService.Add(r.Context(), utubID, user.ID, body["urlString"], body["urlTitle"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	message := "URL added to UTub."
	if created {
		message = "New URL created and added to UTub."
	}
	response.Success(w, message, response.Envelope{
		"utubID": utubID,
		"URL":    view,
	}, s.logger)
}

// handleGetURL fetches one URL-in-UTub view. AJAX only: direct browser hits
// are refused as not-found so member-only links cannot be probed.
func (s *Server) handleGetURL(w http.ResponseWriter, r *http.Request) {
	if !isAJAX(r) {
		response.NotFoundPage(w)
		return
	}

	user := getUser(r.Context())
	utubID, ok := pathID(r, "utubID")
	utubURLID, ok2 := pathID(r, "utubUrlID")
	if !ok || !ok2 {
		response.NotFound(w, "URL not found in UTub.", s.logger)
		return
	}

	view, err := s.urlService.Get(r.Context(), utubID, utubURLID, user.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response.Success(w, "URL found in UTub.", response.Envelope{
		"utubID": utubID,
		"URL":    view,
	}, s.logger)
}

// handleUpdateURLString rebinds a UTubURL to a new canonical URL.
func (s *Server) handleUpdateURLString(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	utubID, ok := pathID(r, "utubID")
	utubURLID, ok2 := pathID(r, "utubUrlID")
	if !ok || !ok2 {
		s.handleNotFound(w, r)
		return
	}

	body, err := bodyValues(r)
	if err != nil {
		s.badBody(w)
		return
	}

	view, changed, err := s.urlService.UpdateString(r.Context(), utubID, utubURLID, user.ID, body["urlString"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	payload := response.Envelope{
		"utubID": utubID,
		"URL":    view,
	}
	if !changed {
		response.NoChange(w, "URL not modified.", payload, s.logger)
		return
	}
	response.Success(w, "URL modified.", payload, s.logger)
}

// handleUpdateURLTitle overwrites the member-editable title.
func (s *Server) handleUpdateURLTitle(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	utubID, ok := pathID(r, "utubID")
	utubURLID, ok2 := pathID(r, "utubUrlID")
	if !ok || !ok2 {
		s.handleNotFound(w, r)
		return
	}

	body, err := bodyValues(r)
	if err != nil {
		s.badBody(w)
		return
	}

	view, changed, err := s.urlService.UpdateTitle(r.Context(), utubID, utubURLID, user.ID, body["urlTitle"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	payload := response.Envelope{
		"utubID": utubID,
		"URL":    view,
	}
	if !changed {
		response.NoChange(w, "URL title not modified.", payload, s.logger)
		return
	}
	response.Success(w, "URL title modified.", payload, s.logger)
}

// handleRemoveURL deletes a URL from a UTub. The global URL row survives.
func (s *Server) handleRemoveURL(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	utubID, ok := pathID(r, "utubID")
	utubURLID, ok2 := pathID(r, "utubUrlID")
	if !ok || !ok2 {
		s.handleNotFound(w, r)
		return
	}

	view, err := s.urlService.Remove(r.Context(), utubID, utubURLID, user.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response.Success(w, "URL removed from this UTub.", response.Envelope{
		"utubID": utubID,
		"URL":    view,
	}, s.logger)
}

// handleNotFound renders a 404 the way the caller expects it.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if isAJAX(r) {
		response.NotFound(w, "URL not found in UTub.", s.logger)
		return
	}
	response.NotFoundPage(w)
}
