package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/utubapp/utub-server/internal/domain"
	"github.com/utubapp/utub-server/internal/store"
)

// CreateUTub inserts a UTub and its creator membership in one transaction.
// The creator's membership exists for exactly as long as the UTub does.
func (s *Store) CreateUTub(ctx context.Context, u *domain.UTub) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO utubs (name, description, creator_user_id, last_updated, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			u.Name,
			u.Description,
			u.CreatorUserID,
			formatTime(u.LastUpdated),
			formatTime(u.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert utub: %w", err)
		}
		if u.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO utub_members (utub_id, user_id, role, added_at)
			VALUES (?, ?, ?, ?)`,
			u.ID,
			u.CreatorUserID,
			domain.RoleCreator,
			formatTime(u.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert creator membership: %w", err)
		}
		return nil
	})
}

// GetUTubByID retrieves a UTub by id.
// Returns store.ErrUTubNotFound if it does not exist.
func (s *Store) GetUTubByID(ctx context.Context, id int64) (*domain.UTub, error) {
	return scanUTub(s.db.QueryRowContext(ctx, `
		SELECT id, name, description, creator_user_id, last_updated, created_at
		FROM utubs WHERE id = ?`, id))
}

// DeleteUTub destroys a UTub and cascades to members, URLs-in-UTub, tags,
// and links. Only the creator may do this.
func (s *Store) DeleteUTub(ctx context.Context, utubID, callerID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		utub, err := getUTubTx(ctx, tx, utubID)
		if err != nil {
			return err
		}
		if utub.CreatorUserID != callerID {
			return store.ErrNotPermitted
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM utubs WHERE id = ?`, utubID); err != nil {
			return fmt.Errorf("delete utub: %w", err)
		}
		return nil
	})
}

// AddMember adds a user as a plain member and bumps the watermark.
// Returns store.ErrMemberExists if the user already belongs.
func (s *Store) AddMember(ctx context.Context, utubID, userID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getUTubTx(ctx, tx, utubID); err != nil {
			return err
		}

		now := time.Now()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO utub_members (utub_id, user_id, role, added_at)
			VALUES (?, ?, ?, ?)`,
			utubID,
			userID,
			domain.RoleMember,
			formatTime(now),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrMemberExists
			}
			return fmt.Errorf("insert membership: %w", err)
		}

		return bumpWatermark(ctx, tx, utubID, now)
	})
}

// GetMember retrieves a membership row.
// Returns store.ErrMemberNotFound if the user does not belong to the UTub.
func (s *Store) GetMember(ctx context.Context, utubID, userID int64) (*domain.UTubMember, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT utub_id, user_id, role, added_at
		FROM utub_members WHERE utub_id = ? AND user_id = ?`, utubID, userID)

	var (
		m       domain.UTubMember
		addedAt string
	)
	err := row.Scan(&m.UTubID, &m.UserID, &m.Role, &addedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	if m.AddedAt, err = parseTime(addedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// scanUTub scans a utub row.
func scanUTub(row *sql.Row) (*domain.UTub, error) {
	var (
		u           domain.UTub
		lastUpdated string
		createdAt   string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Description, &u.CreatorUserID, &lastUpdated, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUTubNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.LastUpdated, err = parseTime(lastUpdated); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// getUTubTx loads a UTub inside a transaction.
func getUTubTx(ctx context.Context, tx *sql.Tx, utubID int64) (*domain.UTub, error) {
	return scanUTub(tx.QueryRowContext(ctx, `
		SELECT id, name, description, creator_user_id, last_updated, created_at
		FROM utubs WHERE id = ?`, utubID))
}

// requireMember loads the UTub and verifies the caller belongs to it.
// Order matters: an absent UTub is a 404, a non-member caller a 403.
func requireMember(ctx context.Context, tx *sql.Tx, utubID, callerID int64) (*domain.UTub, error) {
	utub, err := getUTubTx(ctx, tx, utubID)
	if err != nil {
		return nil, err
	}

	var one int
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM utub_members WHERE utub_id = ? AND user_id = ?`,
		utubID, callerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return utub, nil
}

// bumpWatermark advances the UTub's last_updated inside the mutation's own
// transaction. The write also serializes concurrent mutations to the same
// UTub. last_updated is forced strictly forward even when the wall clock
// has not advanced past the previous mutation.
func bumpWatermark(ctx context.Context, tx *sql.Tx, utubID int64, now time.Time) error {
	var cur string
	err := tx.QueryRowContext(ctx, `
		SELECT last_updated FROM utubs WHERE id = ?`, utubID).Scan(&cur)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrUTubNotFound
	}
	if err != nil {
		return err
	}

	last, err := parseTime(cur)
	if err != nil {
		return err
	}
	next := now.UTC()
	if !next.After(last) {
		next = last.Add(time.Nanosecond)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE utubs SET last_updated = ? WHERE id = ?`,
		formatTime(next), utubID)
	if err != nil {
		return fmt.Errorf("bump watermark: %w", err)
	}
	return nil
}
