package api

import (
	"net/http"
	"strconv"

	"github.com/utubapp/utub-server/internal/http/response"
)

// createUTubForm is the create-UTub request body. Sanitization happens in
// the service; the validator covers presence and length.
type createUTubForm struct {
	Name        string `form:"utubName" validate:"required,max=30"`
	Description string `form:"utubDescription" validate:"max=500"`
}

// addMemberForm is the add-member request body.
type addMemberForm struct {
	UserID int64 `form:"userID" validate:"required,gt=0"`
}

// handleCreateUTub makes a new UTub with the caller as creator.
func (s *Server) handleCreateUTub(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())

	body, err := bodyValues(r)
	if err != nil {
		s.badBody(w)
		return
	}
	form := createUTubForm{
		Name:        body["utubName"],
		Description: body["utubDescription"],
	}
	if err := s.validator.Validate(form); err != nil {
		s.handleError(w, r, err)
		return
	}

	view, err := s.utubService.Create(r.Context(), user.ID, form.Name, form.Description)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response.Success(w, "UTub created.", response.Envelope{
		"UTub": view,
	}, s.logger)
}

// handleDeleteUTub destroys a UTub and everything it owns. Creator only.
func (s *Server) handleDeleteUTub(w http.ResponseWriter, r *http.Request) {
	user := getUser(r.Context())
	utubID, ok := pathID(r, "utubID")
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	view, err := s.utubService.Delete(r.Context(), utubID, user.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response.Success(w, "UTub deleted.", response.Envelope{
		"UTub": view,
	}, s.logger)
}

// handleAddMember joins a user to a UTub. Creator only.
func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
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
	newUserID, _ := strconv.ParseInt(body["userID"], 10, 64)
	form := addMemberForm{UserID: newUserID}
	if err := s.validator.Validate(form); err != nil {
		s.handleError(w, r, err)
		return
	}

	member, err := s.utubService.AddMember(r.Context(), utubID, user.ID, form.UserID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	response.Success(w, "Member added to UTub.", response.Envelope{
		"utubID": utubID,
		"member": member,
	}, s.logger)
}
