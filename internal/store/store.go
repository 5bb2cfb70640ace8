// Package store defines the persistence interface for the UTub server and
// the result shapes its mutations report back to the service layer.
//
// Every mutating operation runs in a single transaction: permission checks,
// domain-rule checks, the writes themselves, and the UTub watermark bump all
// commit or roll back together. Readers see the full pre-state or the full
// post-state, never a mix.
package store

import (
	"context"

	"github.com/utubapp/utub-server/internal/domain"
)

// AddURLResult reports an add-URL mutation. CreatedURL distinguishes "new
// canonical URL row created and added" from "existing URL added".
type AddURLResult struct {
	UTubURL    *domain.UTubURL
	CreatedURL bool
}

// AttachResult reports an attach-tag mutation. URLTagIDs is the URL's full
// tag-id list after the attach, sorted ascending; TagCount is how many URLs
// in the UTub now bear the tag.
type AttachResult struct {
	Tag       *domain.UTubTag
	URLTagIDs []int64
	TagCount  int
}

// DetachResult reports a detach-tag mutation. TagStillInUse is whether any
// other URL in the UTub still bears the tag.
type DetachResult struct {
	URLTagIDs     []int64
	TagStillInUse bool
}

// ReplaceResult reports a replace-tag mutation. Changed is false when the
// new string equaled the old (no write happened). PreviousStillInUse tells
// the UI whether to drop the old tag from the UTub's filter list.
type ReplaceResult struct {
	Tag                *domain.UTubTag
	URLTagIDs          []int64
	TagCount           int
	PreviousStillInUse bool
	Changed            bool
}

// DeleteTagResult reports a delete-tag mutation: the removed tag snapshot
// and the ids of the UTubURLs that bore it.
type DeleteTagResult struct {
	Tag        *domain.UTubTag
	UTubURLIDs []int64
}

// Store is the transactional persistence interface for the UTub core.
type Store interface {
	// Users and sessions (the seam to the external login component).
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	CreateSession(ctx context.Context, s *domain.Session) error
	GetSessionByToken(ctx context.Context, token string) (*domain.Session, error)

	// UTubs and membership.
	CreateUTub(ctx context.Context, u *domain.UTub) error
	GetUTubByID(ctx context.Context, id int64) (*domain.UTub, error)
	DeleteUTub(ctx context.Context, utubID, callerID int64) error
	AddMember(ctx context.Context, utubID, userID int64) error
	GetMember(ctx context.Context, utubID, userID int64) (*domain.UTubMember, error)

	// URLs in UTubs.
	GetURLByString(ctx context.Context, canonical string) (*domain.URL, error)
	GetUTubURL(ctx context.Context, utubID, utubURLID int64) (*domain.UTubURL, error)
	GetTagsOnURL(ctx context.Context, utubID, utubURLID int64) ([]domain.TagOnURL, error)
	AddURL(ctx context.Context, utubID, callerID int64, canonical string, validated bool, title string) (*AddURLResult, error)
	UpdateURLString(ctx context.Context, utubID, utubURLID, callerID int64, canonical string, validated bool) (*domain.UTubURL, bool, error)
	UpdateURLTitle(ctx context.Context, utubID, utubURLID, callerID int64, title string) (*domain.UTubURL, bool, error)
	RemoveURL(ctx context.Context, utubID, utubURLID, callerID int64) (*domain.UTubURL, error)

	// UTub-scoped tags.
	CreateTag(ctx context.Context, utubID, callerID int64, tagString string) (*domain.UTubTag, error)
	DeleteTag(ctx context.Context, utubID, tagID, callerID int64) (*DeleteTagResult, error)
	AttachTag(ctx context.Context, utubID, utubURLID, callerID int64, tagString string) (*AttachResult, error)
	DetachTag(ctx context.Context, utubID, utubURLID, urlTagID, callerID int64) (*DetachResult, error)
	ReplaceTag(ctx context.Context, utubID, utubURLID, oldTagID, callerID int64, newString string) (*ReplaceResult, error)

	Close() error
}
