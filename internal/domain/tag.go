package domain

import "time"

// Tag constraints. The cap is inclusive: a fifth tag is accepted, a sixth is
// rejected. Tag-string equality is byte-exact; no case folding.
const (
	MinTagLength  = 1
	MaxTagLength  = 30
	MaxTagsPerURL = 5
)

// UTubTag is a tag string scoped to one UTub. (utub_id, tag_string) is
// unique; the same text in another UTub is an unrelated row.
type UTubTag struct {
	ID              int64     `json:"id"`
	UTubID          int64     `json:"utub_id"`
	TagString       string    `json:"tag_string"`
	CreatedByUserID int64     `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// UTubURLTag is the three-way link between a UTub, one of its URLs, and one
// of its tags. Its utub_id must agree with both referenced rows, and
// (utub_url_id, utub_tag_id) is unique.
type UTubURLTag struct {
	ID        int64     `json:"id"`
	UTubID    int64     `json:"utub_id"`
	UTubURLID int64     `json:"utub_url_id"`
	UTubTagID int64     `json:"utub_tag_id"`
	AddedAt   time.Time `json:"added_at"`
}

// TagOnURL pairs a tag id with its string for the UTubURL view.
type TagOnURL struct {
	TagID     int64  `json:"tag_id"`
	TagString string `json:"tag_string"`
}
