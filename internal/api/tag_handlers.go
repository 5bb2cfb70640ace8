package api

import (
	"net/http"

	"github.com/utubapp/utub-server/internal/http/response"
)

// handleCreateTag adds a new tag string to the UTub's vocabulary.
func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
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

	outcome, err := s.tagService.Create(r.Context(), utubID, user.ID, body["tagString"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response.Success(w, "Tag added to UTub.", response.Envelope{
		"utubID":      utubID,
		"UTubTag":     outcome.Tag,
		"countInUTub": outcome.TagCount,
	}, s.logger)
}

// handleDeleteTag removes a tag from the UTub; its links to URLs cascade.
func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	utubID, ok := pathID(r, "utubID")
	tagID, ok2 := pathID(r, "utubTagID")
	if !ok || !ok2 {
		s.handleNotFound(w, r)
		return
	}

	outcome, err := s.tagService.Delete(r.Context(), utubID, tagID, user.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response.Success(w, "Tag removed from UTub.", response.Envelope{
		"utubID":  utubID,
		"UTubTag": outcome.Tag,
		"urlIDs":  outcome.UTubURLIDs,
	}, s.logger)
}

// handleAttachTag puts a tag on a URL, creating the UTub tag when the string
// is new.
func (s *Server) handleAttachTag(w http.ResponseWriter, r *http.Request) {
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

	outcome, err := s.tagService.Attach(r.Context(), utubID, utubURLID, user.ID, body["tagString"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response.Success(w, "Tag added to URL.", response.Envelope{
		"utubID":        utubID,
		"utubUrlID":     utubURLID,
		"UTubTag":       outcome.Tag,
		"utubUrlTagIDs": outcome.URLTagIDs,
		"countInUTub":   outcome.TagCount,
	}, s.logger)
}

// handleDetachTag removes one tag link from a URL.
func (s *Server) handleDetachTag(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	utubID, ok := pathID(r, "utubID")
	utubURLID, ok2 := pathID(r, "utubUrlID")
	urlTagID, ok3 := pathID(r, "utubUrlTagID")
	if !ok || !ok2 || !ok3 {
		s.handleNotFound(w, r)
		return
	}

	outcome, err := s.tagService.Detach(r.Context(), utubID, utubURLID, urlTagID, user.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response.Success(w, "Tag removed from URL.", response.Envelope{
		"utubID":         utubID,
		"utubUrlID":      utubURLID,
		"utubUrlTagIDs":  outcome.URLTagIDs,
		"tagStillInUTub": outcome.TagStillInUse,
	}, s.logger)
}

// handleReplaceTag rebinds one tag link on a URL to a new tag string.
func (s *Server) handleReplaceTag(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	utubID, ok := pathID(r, "utubID")
	utubURLID, ok2 := pathID(r, "utubUrlID")
	oldTagID, ok3 := pathID(r, "utubTagID")
	if !ok || !ok2 || !ok3 {
		s.handleNotFound(w, r)
		return
	}

	body, err := bodyValues(r)
	if err != nil {
		s.badBody(w)
		return
	}

	outcome, err := s.tagService.Replace(r.Context(), utubID, utubURLID, oldTagID, user.ID, body["tagString"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	payload := response.Envelope{
		"utubID":                 utubID,
		"utubUrlID":              utubURLID,
		"UTubTag":                outcome.Tag,
		"utubUrlTagIDs":          outcome.URLTagIDs,
		"countInUTub":            outcome.TagCount,
		"previousTagStillInUTub": outcome.PreviousStillInUse,
	}
	if !outcome.Changed {
		response.NoChange(w, "Tag not modified.", payload, s.logger)
		return
	}
	response.Success(w, "Tag on URL modified.", payload, s.logger)
}
