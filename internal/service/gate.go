// Package service implements the UTub engines: the authorization gate, the
// URL engine, and the tag engine. Services validate and normalize input,
// call a single transactional store operation, and translate store errors
// into the coded domain errors the envelope layer understands.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/utubapp/utub-server/internal/domain"
	apperrors "github.com/utubapp/utub-server/internal/errors"
	"github.com/utubapp/utub-server/internal/store"
)

// Gate answers authorization questions for read paths. Mutations re-verify
// inside their own store transaction; the gate exists so reads and handlers
// can distinguish "not a member" (403) from "not there / wrong UTub" (404)
// without leaking existence.
type Gate struct {
	store  store.Store
	logger *slog.Logger
}

// NewGate creates an authorization gate.
func NewGate(st store.Store, logger *slog.Logger) *Gate {
	return &Gate{store: st, logger: logger}
}

// RequireMember verifies the caller belongs to the UTub and returns it.
func (g *Gate) RequireMember(ctx context.Context, utubID, userID int64) (*domain.UTub, error) {
	utub, err := g.store.GetUTubByID(ctx, utubID)
	if err != nil {
		if errors.Is(err, store.ErrUTubNotFound) {
			return nil, apperrors.NotFound("UTub not found.")
		}
		return nil, err
	}

	if _, err := g.store.GetMember(ctx, utubID, userID); err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, apperrors.Forbidden("You are not a member of this UTub.")
		}
		return nil, err
	}
	return utub, nil
}

// RequireCreator verifies the caller created the UTub and returns it.
func (g *Gate) RequireCreator(ctx context.Context, utubID, userID int64) (*domain.UTub, error) {
	utub, err := g.RequireMember(ctx, utubID, userID)
	if err != nil {
		return nil, err
	}
	if utub.CreatorUserID != userID {
		return nil, apperrors.Forbidden("Only the UTub creator may do this.")
	}
	return utub, nil
}

// CanEditUTubURL verifies the caller may mutate a URL-in-UTub (adder or
// creator) and returns the row. Nonexistent rows and rows in a different
// UTub than named read the same: not found.
func (g *Gate) CanEditUTubURL(ctx context.Context, utubID, utubURLID, userID int64) (*domain.UTubURL, error) {
	utub, err := g.RequireMember(ctx, utubID, userID)
	if err != nil {
		return nil, err
	}

	utubURL, err := g.store.GetUTubURL(ctx, utubID, utubURLID)
	if err != nil {
		if errors.Is(err, store.ErrUTubURLNotFound) {
			return nil, apperrors.NotFound("URL not found in UTub.")
		}
		return nil, err
	}
	if !utubURL.CanBeEditedBy(userID, utub.CreatorUserID) {
		return nil, apperrors.Forbidden("You may not modify this URL.")
	}
	return utubURL, nil
}
