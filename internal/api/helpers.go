package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utubapp/utub-server/internal/errors"
	"github.com/utubapp/utub-server/internal/http/response"
)

// pathID parses an integer path parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// bodyValues flattens the request body into string fields. JSON objects and
// form-encoded bodies are both accepted on write endpoints.
func bodyValues(r *http.Request) (map[string]string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var raw map[string]any
		if err := json.UnmarshalRead(r.Body, &raw); err != nil {
			return nil, err
		}
		out := make(map[string]string, len(raw))
		for k, v := range raw {
			switch t := v.(type) {
			case string:
				out[k] = t
			case float64:
				out[k] = strconv.FormatFloat(t, 'f', -1, 64)
			case bool:
				out[k] = strconv.FormatBool(t)
			}
		}
		return out, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		out[k] = r.PostForm.Get(k)
	}
	return out, nil
}

// handleError renders a domain error. Not-found denials on direct browser
// hits get the HTML page; everything else gets the JSON envelope.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *apperrors.Error
	if apperrors.As(err, &domainErr) && domainErr.Code == apperrors.CodeNotFound && !isAJAX(r) {
		response.NotFoundPage(w)
		return
	}
	response.HandleError(w, err, s.logger)
}

// badBody renders the malformed-body failure.
func (s *Server) badBody(w http.ResponseWriter) {
	response.Failure(w, http.StatusBadRequest, "Unable to parse request body.", 0, nil, s.logger)
}
