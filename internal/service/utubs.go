package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/utubapp/utub-server/internal/domain"
	apperrors "github.com/utubapp/utub-server/internal/errors"
	"github.com/utubapp/utub-server/internal/sanitize"
	"github.com/utubapp/utub-server/internal/store"
)

// Name bounds for UTubs.
const (
	maxUTubNameLength        = 30
	maxUTubDescriptionLength = 500
)

// UTubView is the "UTub" payload key of the envelope.
type UTubView struct {
	UTubID          int64     `json:"utubID"`
	Name            string    `json:"utubName"`
	Description     string    `json:"utubDescription"`
	CreatorUserID   int64     `json:"utubCreatorID"`
	UTubLastUpdated time.Time `json:"utubLastUpdated"`
}

// UTubService implements the UTub lifecycle operations the core owns:
// create, delete, add member.
type UTubService struct {
	store  store.Store
	logger *slog.Logger
}

// NewUTubService creates the UTub service.
func NewUTubService(st store.Store, logger *slog.Logger) *UTubService {
	return &UTubService{store: st, logger: logger}
}

// Create makes a new UTub with the caller as creator and sole member.
func (s *UTubService) Create(ctx context.Context, userID int64, rawName, rawDescription string) (*UTubView, error) {
	fields := map[string][]string{}

	name, err := sanitize.CleanField(rawName, maxUTubNameLength)
	if err != nil {
		fields["utubName"] = []string{fieldMessage(err)}
	}

	// Description is optional; blank stays blank.
	description := ""
	if rawDescription != "" {
		description, err = sanitize.CleanField(rawDescription, maxUTubDescriptionLength)
		if err != nil && !errors.Is(err, sanitize.ErrBlank) {
			fields["utubDescription"] = []string{fieldMessage(err)}
		}
		if errors.Is(err, sanitize.ErrBlank) {
			description = ""
		}
	}

	if len(fields) > 0 {
		return nil, apperrors.Validation("Unable to make this UTub, please check inputs.").
			WithWireCode(1).WithFields(fields)
	}

	now := time.Now().UTC()
	utub := &domain.UTub{
		Name:          name,
		Description:   description,
		CreatorUserID: userID,
		LastUpdated:   now,
		CreatedAt:     now,
	}
	if err := s.store.CreateUTub(ctx, utub); err != nil {
		return nil, wrapStore(err, "create UTub")
	}
	return utubView(utub), nil
}

// Delete removes a UTub and everything it owns. Creator only.
func (s *UTubService) Delete(ctx context.Context, utubID, userID int64) (*UTubView, error) {
	utub, err := s.store.GetUTubByID(ctx, utubID)
	if err != nil {
		if errors.Is(err, store.ErrUTubNotFound) {
			return nil, apperrors.NotFound("UTub not found.")
		}
		return nil, wrapStore(err, "load UTub")
	}

	if err := s.store.DeleteUTub(ctx, utubID, userID); err != nil {
		switch {
		case errors.Is(err, store.ErrUTubNotFound):
			return nil, apperrors.NotFound("UTub not found.")
		case errors.Is(err, store.ErrNotPermitted):
			return nil, apperrors.Forbidden("You do not have permission to delete this UTub.")
		default:
			return nil, wrapStore(err, "delete UTub")
		}
	}
	return utubView(utub), nil
}

// AddMember joins a user to a UTub. Creator only; joining an already-joined
// user is a conflict.
func (s *UTubService) AddMember(ctx context.Context, utubID, callerID, newUserID int64) (*domain.UTubMember, error) {
	utub, err := s.store.GetUTubByID(ctx, utubID)
	if err != nil {
		if errors.Is(err, store.ErrUTubNotFound) {
			return nil, apperrors.NotFound("UTub not found.")
		}
		return nil, wrapStore(err, "load UTub")
	}
	if utub.CreatorUserID != callerID {
		return nil, apperrors.Forbidden("You do not have permission to add members to this UTub.")
	}

	if _, err := s.store.GetUserByID(ctx, newUserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found.")
		}
		return nil, wrapStore(err, "load user")
	}

	if err := s.store.AddMember(ctx, utubID, newUserID); err != nil {
		if errors.Is(err, store.ErrMemberExists) {
			return nil, apperrors.Conflict("User is already a member of this UTub.")
		}
		return nil, wrapStore(err, "add member")
	}
	return s.store.GetMember(ctx, utubID, newUserID)
}

func utubView(u *domain.UTub) *UTubView {
	return &UTubView{
		UTubID:          u.ID,
		Name:            u.Name,
		Description:     u.Description,
		CreatorUserID:   u.CreatorUserID,
		UTubLastUpdated: u.LastUpdated,
	}
}
