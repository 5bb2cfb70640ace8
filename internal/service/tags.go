package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utubapp/utub-server/internal/domain"
	apperrors "github.com/utubapp/utub-server/internal/errors"
	"github.com/utubapp/utub-server/internal/sanitize"
	"github.com/utubapp/utub-server/internal/store"
)

// Stable integer codes for tag endpoints.
const (
	wireTagForm      = 1
	wireTagDuplicate = 2
	wireTagRejected  = 3
)

// TagView is the "UTubTag" payload key of the envelope.
type TagView struct {
	UTubTagID int64  `json:"utubTagID"`
	TagString string `json:"tagString"`
}

// TagCreateOutcome reports a created UTub tag and how many URLs currently
// bear it (zero at creation).
type TagCreateOutcome struct {
	Tag      TagView
	TagCount int
}

// TagAttachOutcome reports a tag attached to a URL: the tag, the URL's full
// sorted tag-id list, and the UTub-wide count of URLs bearing the tag.
type TagAttachOutcome struct {
	Tag       TagView
	URLTagIDs []int64
	TagCount  int
}

// TagDetachOutcome reports a tag detached from a URL. TagStillInUse tells the
// UI whether any other URL in the UTub still bears it.
type TagDetachOutcome struct {
	URLTagIDs     []int64
	TagStillInUse bool
}

// TagReplaceOutcome reports a tag-string edit on a URL. Changed is false when
// the new string equaled the old and nothing was written.
type TagReplaceOutcome struct {
	Tag                TagView
	URLTagIDs          []int64
	TagCount           int
	PreviousStillInUse bool
	Changed            bool
}

// TagDeleteOutcome reports a UTub-wide tag deletion: the removed snapshot and
// the ids of the UTubURLs that bore it.
type TagDeleteOutcome struct {
	Tag        TagView
	UTubURLIDs []int64
}

// TagService implements the UTub-scoped tag operations: create, delete,
// attach, detach, replace.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates the tag engine.
func NewTagService(st store.Store, logger *slog.Logger) *TagService {
	return &TagService{store: st, logger: logger}
}

// Create adds a new tag string to the UTub's vocabulary.
func (s *TagService) Create(ctx context.Context, utubID, userID int64, rawTag string) (*TagCreateOutcome, error) {
	tagString, err := cleanTagString(rawTag)
	if err != nil {
		return nil, err
	}

	tag, err := s.store.CreateTag(ctx, utubID, userID, tagString)
	if err != nil {
		if errors.Is(err, store.ErrTagInUTub) {
			return nil, apperrors.Conflict("Tag already in UTub.").WithWireCode(wireTagDuplicate)
		}
		return nil, s.mapTagError(err)
	}
	return &TagCreateOutcome{Tag: tagView(tag)}, nil
}

// Delete removes a tag from the UTub entirely; its links to URLs cascade.
func (s *TagService) Delete(ctx context.Context, utubID, tagID, userID int64) (*TagDeleteOutcome, error) {
	res, err := s.store.DeleteTag(ctx, utubID, tagID, userID)
	if err != nil {
		return nil, s.mapTagError(err)
	}
	return &TagDeleteOutcome{
		Tag:        tagView(res.Tag),
		UTubURLIDs: res.UTubURLIDs,
	}, nil
}

// Attach puts a tag string on a URL in the UTub, creating the UTub tag if the
// string is new. The five-tag cap is inclusive: a fifth tag is accepted, a
// sixth rejected.
func (s *TagService) Attach(ctx context.Context, utubID, utubURLID, userID int64, rawTag string) (*TagAttachOutcome, error) {
	tagString, err := cleanTagString(rawTag)
	if err != nil {
		return nil, err
	}

	res, err := s.store.AttachTag(ctx, utubID, utubURLID, userID, tagString)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTooManyTags):
			return nil, apperrors.Validation("URLs can only have up to 5 tags.").WithWireCode(wireTagRejected)
		case errors.Is(err, store.ErrTagOnURL):
			return nil, apperrors.Validation("URL already has this tag.").WithWireCode(wireTagDuplicate)
		default:
			return nil, s.mapTagError(err)
		}
	}
	return &TagAttachOutcome{
		Tag:       tagView(res.Tag),
		URLTagIDs: res.URLTagIDs,
		TagCount:  res.TagCount,
	}, nil
}

// Detach removes one tag link from a URL.
func (s *TagService) Detach(ctx context.Context, utubID, utubURLID, urlTagID, userID int64) (*TagDetachOutcome, error) {
	res, err := s.store.DetachTag(ctx, utubID, utubURLID, urlTagID, userID)
	if err != nil {
		return nil, s.mapTagError(err)
	}
	return &TagDetachOutcome{
		URLTagIDs:     res.URLTagIDs,
		TagStillInUse: res.TagStillInUse,
	}, nil
}

// Replace rebinds one tag link on a URL to a new tag string. The Changed
// field of the outcome is false when the new string equaled the old.
func (s *TagService) Replace(ctx context.Context, utubID, utubURLID, oldTagID, userID int64, rawTag string) (*TagReplaceOutcome, error) {
	tagString, err := cleanTagString(rawTag)
	if err != nil {
		return nil, err
	}

	res, err := s.store.ReplaceTag(ctx, utubID, utubURLID, oldTagID, userID, tagString)
	if err != nil {
		if errors.Is(err, store.ErrTagOnURL) {
			return nil, apperrors.Validation("URL already has this tag.").WithWireCode(wireTagDuplicate)
		}
		return nil, s.mapTagError(err)
	}
	return &TagReplaceOutcome{
		Tag:                tagView(res.Tag),
		URLTagIDs:          res.URLTagIDs,
		TagCount:           res.TagCount,
		PreviousStillInUse: res.PreviousStillInUse,
		Changed:            res.Changed,
	}, nil
}

// cleanTagString enforces the tag-string constraints: trimmed, non-blank,
// markup-free, within length bounds. Comparison downstream is byte-exact.
func cleanTagString(raw string) (string, error) {
	tagString, err := sanitize.CleanField(raw, domain.MaxTagLength)
	if err != nil {
		return "", apperrors.Validation("Unable to add this tag, please check inputs.").
			WithWireCode(wireTagForm).
			WithFields(map[string][]string{"tagString": {fieldMessage(err)}})
	}
	if len(tagString) < domain.MinTagLength {
		return "", apperrors.Validation("Unable to add this tag, please check inputs.").
			WithWireCode(wireTagForm).
			WithFields(map[string][]string{"tagString": {
				fmt.Sprintf("Field must be between %d and %d characters.", domain.MinTagLength, domain.MaxTagLength),
			}})
	}
	return tagString, nil
}

// mapTagError translates store sentinels from tag operations into coded
// domain errors.
func (s *TagService) mapTagError(err error) error {
	switch {
	case errors.Is(err, store.ErrUTubNotFound):
		return apperrors.NotFound("UTub not found.")
	case errors.Is(err, store.ErrUTubURLNotFound):
		return apperrors.NotFound("URL not found in UTub.")
	case errors.Is(err, store.ErrTagNotFound):
		return apperrors.NotFound("Tag not found in UTub.")
	case errors.Is(err, store.ErrURLTagNotFound):
		return apperrors.NotFound("Tag not found on URL.")
	case errors.Is(err, store.ErrMemberNotFound), errors.Is(err, store.ErrNotMember):
		return apperrors.Forbidden("You are not a member of this UTub.")
	case errors.Is(err, store.ErrNotPermitted):
		return apperrors.Forbidden("You may not modify this tag.")
	default:
		return wrapStore(err, "tag operation failed")
	}
}

func tagView(t *domain.UTubTag) TagView {
	return TagView{UTubTagID: t.ID, TagString: t.TagString}
}
