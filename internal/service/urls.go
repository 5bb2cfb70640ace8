package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/utubapp/utub-server/internal/domain"
	apperrors "github.com/utubapp/utub-server/internal/errors"
	"github.com/utubapp/utub-server/internal/sanitize"
	"github.com/utubapp/utub-server/internal/store"
	"github.com/utubapp/utub-server/internal/urlcheck"
)

// Stable integer codes for URL endpoints. Front-end clients bind to these;
// never renumber.
const (
	wireURLForm        = 1
	wireURLUnable      = 2
	wireURLInvalid     = 3
	wireURLInUTub      = 4
	wireURLCredentials = 5
	wireURLRateLimited = 6
)

// URLChecker resolves a raw URL to its canonical form and a liveness verdict.
type URLChecker interface {
	Check(ctx context.Context, raw string) (urlcheck.Result, error)
}

// URLView is the "URL" payload key of the envelope: the UTubURL row as the
// front end renders it, with its tag ids sorted ascending.
type URLView struct {
	UTubURLID int64             `json:"utubUrlID"`
	URLString string            `json:"urlString"`
	Title     string            `json:"urlTitle"`
	TagIDs    []int64           `json:"utubUrlTagIDs"`
	Tags      []domain.TagOnURL `json:"tags,omitempty"`
}

// URLService implements the URL operations on a UTub: add, get, update
// string, update title, remove.
type URLService struct {
	store   store.Store
	checker URLChecker
	gate    *Gate
	logger  *slog.Logger
}

// NewURLService creates the URL engine.
func NewURLService(st store.Store, checker URLChecker, gate *Gate, logger *slog.Logger) *URLService {
	return &URLService{store: st, checker: checker, gate: gate, logger: logger}
}

// Add normalizes and best-effort validates rawURL, upserts the global URL
// row, and links it into the UTub. The bool result distinguishes "new
// canonical URL created" from "existing URL linked".
func (s *URLService) Add(ctx context.Context, utubID, userID int64, rawURL, rawTitle string) (*URLView, bool, error) {
	fields := map[string][]string{}

	title, err := sanitize.CleanField(rawTitle, domain.MaxTitleLength)
	if err != nil {
		fields["urlTitle"] = []string{fieldMessage(err)}
	}
	if strings.TrimSpace(rawURL) == "" {
		fields["urlString"] = []string{"This field is required."}
	} else if len(rawURL) > domain.MaxURLLength {
		fields["urlString"] = []string{"Field cannot be longer than 2000 characters."}
	}
	if len(fields) > 0 {
		return nil, false, apperrors.Validation("Unable to add this URL, please check inputs.").
			WithWireCode(wireURLForm).WithFields(fields)
	}

	canonical, validated, err := s.resolveURL(ctx, rawURL)
	if err != nil {
		return nil, false, err
	}

	res, err := s.store.AddURL(ctx, utubID, userID, canonical, validated, title)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrURLInUTub):
			return nil, false, apperrors.Conflict("URL already in UTub.").
				WithWireCode(wireURLInUTub).
				WithPayload(map[string]any{"urlString": canonical})
		default:
			return nil, false, s.mapURLError(err, "Unable to add this URL.")
		}
	}

	return &URLView{
		UTubURLID: res.UTubURL.ID,
		URLString: res.UTubURL.URLString,
		Title:     res.UTubURL.Title,
		TagIDs:    []int64{},
	}, res.CreatedURL, nil
}

// Get returns one URL-in-UTub view with its sorted tag pairs. Members only.
func (s *URLService) Get(ctx context.Context, utubID, utubURLID, userID int64) (*URLView, error) {
	if _, err := s.gate.RequireMember(ctx, utubID, userID); err != nil {
		return nil, err
	}

	utubURL, err := s.store.GetUTubURL(ctx, utubID, utubURLID)
	if err != nil {
		return nil, s.mapURLError(err, "Unable to load this URL.")
	}
	return s.viewWithTags(ctx, utubURL)
}

// UpdateString rebinds the UTubURL to a new canonical URL, preserving title,
// adder, and tags. The bool result is false when the new string equals the
// stored canonical and nothing was written.
func (s *URLService) UpdateString(ctx context.Context, utubID, utubURLID, userID int64, rawURL string) (*URLView, bool, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, false, apperrors.Validation("Unable to modify this URL, please check inputs.").
			WithWireCode(wireURLForm).
			WithFields(map[string][]string{"urlString": {"This field is required."}})
	}

	canonical, validated, err := s.resolveURL(ctx, rawURL)
	if err != nil {
		return nil, false, err
	}

	utubURL, changed, err := s.store.UpdateURLString(ctx, utubID, utubURLID, userID, canonical, validated)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrURLInUTub):
			return nil, false, apperrors.Conflict("URL already in UTub.").
				WithWireCode(wireURLInUTub).
				WithPayload(map[string]any{"urlString": canonical})
		default:
			return nil, false, s.mapURLError(err, "Unable to modify this URL.")
		}
	}

	view, err := s.viewWithTags(ctx, utubURL)
	if err != nil {
		return nil, false, err
	}
	return view, changed, nil
}

// UpdateTitle overwrites the member-editable title. The bool result is false
// when the title was already identical.
func (s *URLService) UpdateTitle(ctx context.Context, utubID, utubURLID, userID int64, rawTitle string) (*URLView, bool, error) {
	title, err := sanitize.CleanField(rawTitle, domain.MaxTitleLength)
	if err != nil {
		return nil, false, apperrors.Validation("Unable to modify this URL, please check inputs.").
			WithWireCode(wireURLForm).
			WithFields(map[string][]string{"urlTitle": {fieldMessage(err)}})
	}

	utubURL, changed, err := s.store.UpdateURLTitle(ctx, utubID, utubURLID, userID, title)
	if err != nil {
		return nil, false, s.mapURLError(err, "Unable to modify this URL.")
	}

	view, err := s.viewWithTags(ctx, utubURL)
	if err != nil {
		return nil, false, err
	}
	return view, changed, nil
}

// Remove deletes the UTubURL row; links to tags cascade away and the global
// URL row survives. Returns the removed snapshot.
func (s *URLService) Remove(ctx context.Context, utubID, utubURLID, userID int64) (*URLView, error) {
	tags, tagsErr := s.store.GetTagsOnURL(ctx, utubID, utubURLID)

	utubURL, err := s.store.RemoveURL(ctx, utubID, utubURLID, userID)
	if err != nil {
		return nil, s.mapURLError(err, "Unable to remove this URL.")
	}

	view := &URLView{
		UTubURLID: utubURL.ID,
		URLString: utubURL.URLString,
		Title:     utubURL.Title,
		TagIDs:    []int64{},
	}
	if tagsErr == nil {
		for _, t := range tags {
			view.TagIDs = append(view.TagIDs, t.TagID)
		}
		view.Tags = tags
	}
	return view, nil
}

// resolveURL runs the checker and maps its verdict to domain errors. A
// rate-limited archival check is fatal only when the stored URL row exists
// and is still unvalidated (the mutation would have required re-validation);
// a fresh submission degrades to validated=false.
func (s *URLService) resolveURL(ctx context.Context, raw string) (string, bool, error) {
	res, err := s.checker.Check(ctx, raw)
	if err != nil {
		if errors.Is(err, urlcheck.ErrCredentials) {
			return "", false, apperrors.ErrURLWithCredentials.
				WithMessage("URLs may not contain login credentials.").
				WithWireCode(wireURLCredentials)
		}
		return "", false, apperrors.ErrInvalidURL.
			WithMessage("Unable to validate this URL.").
			WithWireCode(wireURLInvalid)
	}

	if !res.RateLimited {
		return res.Canonical, res.Validated, nil
	}

	stored, err := s.store.GetURLByString(ctx, res.Canonical)
	switch {
	case err == nil && stored.IsValidated:
		return res.Canonical, true, nil
	case err == nil:
		return "", false, apperrors.ErrWaybackRateLimited.
			WithMessage("Unable to validate this URL, please try again later.").
			WithWireCode(wireURLRateLimited)
	case errors.Is(err, store.ErrURLNotFound):
		return res.Canonical, false, nil
	default:
		return "", false, wrapStore(err, "load URL by canonical string")
	}
}

// viewWithTags builds the envelope view for a UTubURL row.
func (s *URLService) viewWithTags(ctx context.Context, utubURL *domain.UTubURL) (*URLView, error) {
	tags, err := s.store.GetTagsOnURL(ctx, utubURL.UTubID, utubURL.ID)
	if err != nil {
		return nil, wrapStore(err, "load tags on URL")
	}

	view := &URLView{
		UTubURLID: utubURL.ID,
		URLString: utubURL.URLString,
		Title:     utubURL.Title,
		TagIDs:    make([]int64, 0, len(tags)),
		Tags:      tags,
	}
	for _, t := range tags {
		view.TagIDs = append(view.TagIDs, t.TagID)
	}
	return view, nil
}

// mapURLError translates store sentinels from URL operations into coded
// domain errors, with forbiddenMsg as the 403 message for this endpoint.
func (s *URLService) mapURLError(err error, forbiddenMsg string) error {
	switch {
	case errors.Is(err, store.ErrUTubNotFound):
		return apperrors.NotFound("UTub not found.")
	case errors.Is(err, store.ErrUTubURLNotFound), errors.Is(err, store.ErrURLNotFound):
		return apperrors.NotFound("URL not found in UTub.")
	case errors.Is(err, store.ErrMemberNotFound), errors.Is(err, store.ErrNotMember):
		return apperrors.Forbidden("You are not a member of this UTub.")
	case errors.Is(err, store.ErrNotPermitted):
		return apperrors.Forbidden(forbiddenMsg)
	default:
		return wrapStore(err, "URL operation failed")
	}
}

// fieldMessage renders a sanitizer error as a per-field form message.
func fieldMessage(err error) string {
	switch {
	case errors.Is(err, sanitize.ErrMarkup):
		return "Invalid input, please try again."
	case errors.Is(err, sanitize.ErrBlank):
		return "This field is required."
	case errors.Is(err, sanitize.ErrTooLong):
		return "Field exceeds maximum length."
	default:
		return "Invalid input, please try again."
	}
}

// wrapStore converts an unexpected storage failure into an internal error.
func wrapStore(err error, msg string) error {
	return apperrors.Wrap(err, apperrors.CodeInternal, msg)
}
