package domain

import "time"

// Role is a member's standing within a UTub.
type Role string

const (
	RoleCreator Role = "creator"
	RoleMember  Role = "member"
)

// UTub is a named, member-scoped collection of URLs. LastUpdated is the
// watermark: it advances exactly once per successful mutating request, in the
// same transaction as the mutation itself.
type UTub struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	CreatorUserID int64     `json:"creator_user_id"`
	LastUpdated   time.Time `json:"last_updated"`
	CreatedAt     time.Time `json:"created_at"`
}

// UTubMember links a user to a UTub. Exactly one row per (utub, user);
// exactly one creator per UTub, created and destroyed with the UTub itself.
type UTubMember struct {
	UTubID  int64     `json:"utub_id"`
	UserID  int64     `json:"user_id"`
	Role    Role      `json:"role"`
	AddedAt time.Time `json:"added_at"`
}

// IsCreator reports whether this membership carries creator rights.
func (m *UTubMember) IsCreator() bool {
	return m.Role == RoleCreator
}
