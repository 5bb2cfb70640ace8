package domain

import "time"

// Field bounds for user-submitted text.
const (
	MaxURLLength   = 2000
	MaxTitleLength = 140
)

// URL is a globally shared canonical URL string. Rows are created lazily the
// first time any caller submits a new canonical form and are never deleted by
// the core; UTubURLs reference them.
type URL struct {
	ID          int64     `json:"id"`
	URLString   string    `json:"url_string"`
	IsValidated bool      `json:"is_validated"`
	CreatedAt   time.Time `json:"created_at"`
}

// UTubURL localizes a URL to one UTub, carrying the member-editable title and
// the identity of the user who added it. (utub_id, url_id) is unique: a URL
// appears at most once per UTub.
type UTubURL struct {
	ID            int64     `json:"id"`
	UTubID        int64     `json:"utub_id"`
	URLID         int64     `json:"url_id"`
	AddedByUserID int64     `json:"added_by_user_id"`
	Title         string    `json:"title"`
	AddedAt       time.Time `json:"added_at"`
	URLString     string    `json:"url_string,omitempty"`
}

// CanBeEditedBy reports whether userID may mutate this row or its title:
// the adder and the UTub creator may, nobody else.
func (u *UTubURL) CanBeEditedBy(userID, creatorUserID int64) bool {
	return userID == u.AddedByUserID || userID == creatorUserID
}
