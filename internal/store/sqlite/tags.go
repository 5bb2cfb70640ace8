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

// CreateTag inserts a UTub-scoped tag and bumps the watermark.
// Returns store.ErrTagInUTub when the UTub already has the string.
func (s *Store) CreateTag(ctx context.Context, utubID, callerID int64, tagString string) (*domain.UTubTag, error) {
	var result *domain.UTubTag
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireMember(ctx, tx, utubID, callerID); err != nil {
			return err
		}

		now := time.Now()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO utub_tags (utub_id, tag_string, created_by_user_id, created_at)
			VALUES (?, ?, ?, ?)`,
			utubID, tagString, callerID, formatTime(now),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrTagInUTub
			}
			return fmt.Errorf("insert utub_tag: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		result = &domain.UTubTag{
			ID:              id,
			UTubID:          utubID,
			TagString:       tagString,
			CreatedByUserID: callerID,
			CreatedAt:       now.UTC(),
		}
		return bumpWatermark(ctx, tx, utubID, now)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteTag removes a tag from a UTub; the cascade deletes every link to it.
// Any member may delete a tag. Returns the snapshot and the ids of the
// UTubURLs that bore it.
func (s *Store) DeleteTag(ctx context.Context, utubID, tagID, callerID int64) (*store.DeleteTagResult, error) {
	var result store.DeleteTagResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireMember(ctx, tx, utubID, callerID); err != nil {
			return err
		}
		tag, err := getUTubTagTx(ctx, tx, utubID, tagID)
		if err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT utub_url_id FROM utub_url_tags
			WHERE utub_tag_id = ? ORDER BY utub_url_id ASC`, tagID)
		if err != nil {
			return err
		}
		defer rows.Close()

		urlIDs := []int64{}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			urlIDs = append(urlIDs, id)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM utub_tags WHERE id = ?`, tagID); err != nil {
			return fmt.Errorf("delete utub_tag: %w", err)
		}

		result = store.DeleteTagResult{Tag: tag, UTubURLIDs: urlIDs}
		return bumpWatermark(ctx, tx, utubID, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AttachTag puts a tag on a URL-in-UTub, creating the tag when the string is
// new to the UTub. The cap check comes first: a URL already carrying five
// tags rejects any attach regardless of the string.
func (s *Store) AttachTag(ctx context.Context, utubID, utubURLID, callerID int64, tagString string) (*store.AttachResult, error) {
	var result store.AttachResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireMember(ctx, tx, utubID, callerID); err != nil {
			return err
		}
		if _, err := getUTubURLTx(ctx, tx, utubID, utubURLID); err != nil {
			return err
		}

		var linkCount int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM utub_url_tags WHERE utub_url_id = ?`,
			utubURLID).Scan(&linkCount); err != nil {
			return err
		}
		if linkCount >= domain.MaxTagsPerURL {
			return store.ErrTooManyTags
		}

		now := time.Now()
		tag, err := findOrCreateTagTx(ctx, tx, utubID, callerID, tagString, now)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO utub_url_tags (utub_id, utub_url_id, utub_tag_id, added_at)
			VALUES (?, ?, ?, ?)`,
			utubID, utubURLID, tag.ID, formatTime(now),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrTagOnURL
			}
			return fmt.Errorf("insert utub_url_tag: %w", err)
		}

		tagIDs, err := urlTagIDsTx(ctx, tx, utubURLID)
		if err != nil {
			return err
		}
		count, err := tagUseCountTx(ctx, tx, tag.ID)
		if err != nil {
			return err
		}

		result = store.AttachResult{Tag: tag, URLTagIDs: tagIDs, TagCount: count}
		return bumpWatermark(ctx, tx, utubID, now)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DetachTag removes one tag link from a URL-in-UTub.
// Returns store.ErrURLTagNotFound when the link does not exist.
func (s *Store) DetachTag(ctx context.Context, utubID, utubURLID, urlTagID, callerID int64) (*store.DetachResult, error) {
	var result store.DetachResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireMember(ctx, tx, utubID, callerID); err != nil {
			return err
		}
		if _, err := getUTubURLTx(ctx, tx, utubID, utubURLID); err != nil {
			return err
		}

		var tagID int64
		err := tx.QueryRowContext(ctx, `
			SELECT utub_tag_id FROM utub_url_tags
			WHERE id = ? AND utub_url_id = ?`, urlTagID, utubURLID).Scan(&tagID)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrURLTagNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM utub_url_tags WHERE id = ?`, urlTagID); err != nil {
			return fmt.Errorf("delete utub_url_tag: %w", err)
		}

		tagIDs, err := urlTagIDsTx(ctx, tx, utubURLID)
		if err != nil {
			return err
		}
		count, err := tagUseCountTx(ctx, tx, tagID)
		if err != nil {
			return err
		}

		result = store.DetachResult{URLTagIDs: tagIDs, TagStillInUse: count > 0}
		return bumpWatermark(ctx, tx, utubID, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ReplaceTag rebinds one tag link on a URL from the tag identified by
// oldTagID to the tag named by newString, creating the latter when the UTub
// does not have it yet. Changed is false when the strings are equal.
func (s *Store) ReplaceTag(ctx context.Context, utubID, utubURLID, oldTagID, callerID int64, newString string) (*store.ReplaceResult, error) {
	var result store.ReplaceResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := requireMember(ctx, tx, utubID, callerID); err != nil {
			return err
		}
		if _, err := getUTubURLTx(ctx, tx, utubID, utubURLID); err != nil {
			return err
		}
		oldTag, err := getUTubTagTx(ctx, tx, utubID, oldTagID)
		if err != nil {
			return err
		}

		var linkID int64
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM utub_url_tags
			WHERE utub_url_id = ? AND utub_tag_id = ?`, utubURLID, oldTagID).Scan(&linkID)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrURLTagNotFound
		}
		if err != nil {
			return err
		}

		if newString == oldTag.TagString {
			tagIDs, err := urlTagIDsTx(ctx, tx, utubURLID)
			if err != nil {
				return err
			}
			count, err := tagUseCountTx(ctx, tx, oldTagID)
			if err != nil {
				return err
			}
			result = store.ReplaceResult{
				Tag:                oldTag,
				URLTagIDs:          tagIDs,
				TagCount:           count,
				PreviousStillInUse: true,
			}
			return nil
		}

		now := time.Now()
		newTag, err := findOrCreateTagTx(ctx, tx, utubID, callerID, newString, now)
		if err != nil {
			return err
		}

		var dup int64
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM utub_url_tags
			WHERE utub_url_id = ? AND utub_tag_id = ?`, utubURLID, newTag.ID).Scan(&dup)
		if err == nil {
			return store.ErrTagOnURL
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE utub_url_tags SET utub_tag_id = ?, added_at = ? WHERE id = ?`,
			newTag.ID, formatTime(now), linkID); err != nil {
			return fmt.Errorf("rebind utub_url_tag: %w", err)
		}

		tagIDs, err := urlTagIDsTx(ctx, tx, utubURLID)
		if err != nil {
			return err
		}
		newCount, err := tagUseCountTx(ctx, tx, newTag.ID)
		if err != nil {
			return err
		}
		oldCount, err := tagUseCountTx(ctx, tx, oldTagID)
		if err != nil {
			return err
		}

		result = store.ReplaceResult{
			Tag:                newTag,
			URLTagIDs:          tagIDs,
			TagCount:           newCount,
			PreviousStillInUse: oldCount > 0,
			Changed:            true,
		}
		return bumpWatermark(ctx, tx, utubID, now)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// getUTubTagTx loads a tag scoped to a UTub. A tag in a different UTub than
// named reads as absent.
func getUTubTagTx(ctx context.Context, tx *sql.Tx, utubID, tagID int64) (*domain.UTubTag, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, utub_id, tag_string, created_by_user_id, created_at
		FROM utub_tags WHERE id = ? AND utub_id = ?`, tagID, utubID)

	var (
		t         domain.UTubTag
		createdAt string
	)
	err := row.Scan(&t.ID, &t.UTubID, &t.TagString, &t.CreatedByUserID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// findOrCreateTagTx resolves a tag string within a UTub, inserting it when
// absent. String comparison is byte-exact.
func findOrCreateTagTx(ctx context.Context, tx *sql.Tx, utubID, callerID int64, tagString string, now time.Time) (*domain.UTubTag, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, utub_id, tag_string, created_by_user_id, created_at
		FROM utub_tags WHERE utub_id = ? AND tag_string = ?`, utubID, tagString)

	var (
		t         domain.UTubTag
		createdAt string
	)
	err := row.Scan(&t.ID, &t.UTubID, &t.TagString, &t.CreatedByUserID, &createdAt)
	if err == nil {
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		return &t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO utub_tags (utub_id, tag_string, created_by_user_id, created_at)
		VALUES (?, ?, ?, ?)`,
		utubID, tagString, callerID, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert utub_tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &domain.UTubTag{
		ID:              id,
		UTubID:          utubID,
		TagString:       tagString,
		CreatedByUserID: callerID,
		CreatedAt:       now.UTC(),
	}, nil
}

// urlTagIDsTx returns the tag ids on a URL-in-UTub, sorted ascending.
func urlTagIDsTx(ctx context.Context, tx *sql.Tx, utubURLID int64) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT utub_tag_id FROM utub_url_tags
		WHERE utub_url_id = ? ORDER BY utub_tag_id ASC`, utubURLID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// tagUseCountTx counts how many URLs in the UTub currently bear the tag.
func tagUseCountTx(ctx context.Context, tx *sql.Tx, tagID int64) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM utub_url_tags WHERE utub_tag_id = ?`, tagID).Scan(&count)
	return count, err
}
