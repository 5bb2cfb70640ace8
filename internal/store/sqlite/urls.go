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

// GetURLByString retrieves a global URL row by its canonical string.
// Returns store.ErrURLNotFound if no row exists.
func (s *Store) GetURLByString(ctx context.Context, canonical string) (*domain.URL, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url_string, is_validated, created_at
		FROM urls WHERE url_string = ?`, canonical)

	var (
		u         domain.URL
		validated int
		createdAt string
	)
	err := row.Scan(&u.ID, &u.URLString, &validated, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrURLNotFound
	}
	if err != nil {
		return nil, err
	}
	u.IsValidated = validated != 0
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUTubURL retrieves a URL-in-UTub row, including its canonical string.
// A row in a different UTub than named reads as absent.
func (s *Store) GetUTubURL(ctx context.Context, utubID, utubURLID int64) (*domain.UTubURL, error) {
	return scanUTubURL(s.db.QueryRowContext(ctx, utubURLSelect+` WHERE uu.id = ? AND uu.utub_id = ?`,
		utubURLID, utubID))
}

// GetTagsOnURL returns the {tagId, tagString} pairs on a URL-in-UTub,
// sorted ascending by tag id.
func (s *Store) GetTagsOnURL(ctx context.Context, utubID, utubURLID int64) ([]domain.TagOnURL, error) {
	if _, err := s.GetUTubURL(ctx, utubID, utubURLID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.tag_string
		FROM utub_url_tags ut
		JOIN utub_tags t ON t.id = ut.utub_tag_id
		WHERE ut.utub_url_id = ?
		ORDER BY t.id ASC`, utubURLID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []domain.TagOnURL{}
	for rows.Next() {
		var t domain.TagOnURL
		if err := rows.Scan(&t.TagID, &t.TagString); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// AddURL adds a canonical URL to a UTub with the caller as adder. The global
// URL row is created lazily; CreatedURL reports whether this call made it.
// Returns store.ErrURLInUTub when the UTub already carries the URL.
func (s *Store) AddURL(ctx context.Context, utubID, callerID int64, canonical string, validated bool, title string) (*store.AddURLResult, error) {
	var result store.AddURLResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireMember(ctx, tx, utubID, callerID); err != nil {
			return err
		}

		now := time.Now()
		urlID, created, err := upsertURLTx(ctx, tx, canonical, validated, now)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO utub_urls (utub_id, url_id, added_by_user_id, title, added_at)
			VALUES (?, ?, ?, ?, ?)`,
			utubID, urlID, callerID, title, formatTime(now),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrURLInUTub
			}
			return fmt.Errorf("insert utub_url: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		result = store.AddURLResult{
			UTubURL: &domain.UTubURL{
				ID:            id,
				UTubID:        utubID,
				URLID:         urlID,
				AddedByUserID: callerID,
				Title:         title,
				AddedAt:       now.UTC(),
				URLString:     canonical,
			},
			CreatedURL: created,
		}
		return bumpWatermark(ctx, tx, utubID, now)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateURLString rebinds a URL-in-UTub to a new canonical string, keeping
// the title, the adder, and every tag link. The bool result is false when
// the new string equals the stored one (no write, no watermark).
func (s *Store) UpdateURLString(ctx context.Context, utubID, utubURLID, callerID int64, canonical string, validated bool) (*domain.UTubURL, bool, error) {
	var (
		result  *domain.UTubURL
		changed bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		utub, err := requireMember(ctx, tx, utubID, callerID)
		if err != nil {
			return err
		}
		cur, err := getUTubURLTx(ctx, tx, utubID, utubURLID)
		if err != nil {
			return err
		}
		if !cur.CanBeEditedBy(callerID, utub.CreatorUserID) {
			return store.ErrNotPermitted
		}

		if cur.URLString == canonical {
			result = cur
			return nil
		}

		// A different row in the same UTub may already carry the target.
		var otherID int64
		err = tx.QueryRowContext(ctx, `
			SELECT uu.id FROM utub_urls uu
			JOIN urls u ON u.id = uu.url_id
			WHERE uu.utub_id = ? AND u.url_string = ? AND uu.id != ?`,
			utubID, canonical, utubURLID).Scan(&otherID)
		if err == nil {
			return store.ErrURLInUTub
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		now := time.Now()
		urlID, _, err := upsertURLTx(ctx, tx, canonical, validated, now)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE utub_urls SET url_id = ? WHERE id = ?`, urlID, utubURLID); err != nil {
			return fmt.Errorf("rebind utub_url: %w", err)
		}

		cur.URLID = urlID
		cur.URLString = canonical
		result = cur
		changed = true
		return bumpWatermark(ctx, tx, utubID, now)
	})
	if err != nil {
		return nil, false, err
	}
	return result, changed, nil
}

// UpdateURLTitle overwrites the member-editable title. The bool result is
// false when the new title equals the stored one.
func (s *Store) UpdateURLTitle(ctx context.Context, utubID, utubURLID, callerID int64, title string) (*domain.UTubURL, bool, error) {
	var (
		result  *domain.UTubURL
		changed bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		utub, err := requireMember(ctx, tx, utubID, callerID)
		if err != nil {
			return err
		}
		cur, err := getUTubURLTx(ctx, tx, utubID, utubURLID)
		if err != nil {
			return err
		}
		if !cur.CanBeEditedBy(callerID, utub.CreatorUserID) {
			return store.ErrNotPermitted
		}

		if cur.Title == title {
			result = cur
			return nil
		}

		now := time.Now()
		if _, err := tx.ExecContext(ctx, `
			UPDATE utub_urls SET title = ? WHERE id = ?`, title, utubURLID); err != nil {
			return fmt.Errorf("update title: %w", err)
		}

		cur.Title = title
		result = cur
		changed = true
		return bumpWatermark(ctx, tx, utubID, now)
	})
	if err != nil {
		return nil, false, err
	}
	return result, changed, nil
}

// RemoveURL deletes a URL-in-UTub row; the cascade cleans up its tag links.
// The global URL row stays. Returns the removed snapshot.
func (s *Store) RemoveURL(ctx context.Context, utubID, utubURLID, callerID int64) (*domain.UTubURL, error) {
	var result *domain.UTubURL
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		utub, err := requireMember(ctx, tx, utubID, callerID)
		if err != nil {
			return err
		}
		cur, err := getUTubURLTx(ctx, tx, utubID, utubURLID)
		if err != nil {
			return err
		}
		if !cur.CanBeEditedBy(callerID, utub.CreatorUserID) {
			return store.ErrNotPermitted
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM utub_urls WHERE id = ?`, utubURLID); err != nil {
			return fmt.Errorf("delete utub_url: %w", err)
		}

		result = cur
		return bumpWatermark(ctx, tx, utubID, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// utubURLSelect joins utub_urls with the global URL table; must match the
// scan order in scanUTubURL.
const utubURLSelect = `
	SELECT uu.id, uu.utub_id, uu.url_id, uu.added_by_user_id, uu.title, uu.added_at, u.url_string
	FROM utub_urls uu
	JOIN urls u ON u.id = uu.url_id`

// scanUTubURL scans a joined utub_urls row.
func scanUTubURL(row *sql.Row) (*domain.UTubURL, error) {
	var (
		u       domain.UTubURL
		addedAt string
	)
	err := row.Scan(&u.ID, &u.UTubID, &u.URLID, &u.AddedByUserID, &u.Title, &addedAt, &u.URLString)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUTubURLNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.AddedAt, err = parseTime(addedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// getUTubURLTx loads a joined utub_urls row inside a transaction.
func getUTubURLTx(ctx context.Context, tx *sql.Tx, utubID, utubURLID int64) (*domain.UTubURL, error) {
	return scanUTubURL(tx.QueryRowContext(ctx, utubURLSelect+` WHERE uu.id = ? AND uu.utub_id = ?`,
		utubURLID, utubID))
}

// upsertURLTx resolves a canonical string to a global URL row, creating it
// when absent. Concurrent upserts of the same string resolve to one row via
// the unique index. A fresh successful validation upgrades a stored
// unvalidated row.
func upsertURLTx(ctx context.Context, tx *sql.Tx, canonical string, validated bool, now time.Time) (int64, bool, error) {
	var (
		id          int64
		isValidated int
	)
	err := tx.QueryRowContext(ctx, `
		SELECT id, is_validated FROM urls WHERE url_string = ?`, canonical).Scan(&id, &isValidated)
	if err == nil {
		if validated && isValidated == 0 {
			if _, err := tx.ExecContext(ctx, `
				UPDATE urls SET is_validated = 1 WHERE id = ?`, id); err != nil {
				return 0, false, err
			}
		}
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO urls (url_string, is_validated, created_at)
		VALUES (?, ?, ?)`,
		canonical, boolToInt(validated), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent insert of the same string.
			err = tx.QueryRowContext(ctx, `
				SELECT id FROM urls WHERE url_string = ?`, canonical).Scan(&id)
			return id, false, err
		}
		return 0, false, fmt.Errorf("insert url: %w", err)
	}
	id, err = res.LastInsertId()
	return id, true, err
}
