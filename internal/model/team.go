package model

import "time"

type Team struct {
	ID        string        `db:"id" json:"_id"`
	Name      string        `db:"name" json:"name"`
	About     string        `db:"about" json:"about"`
	Photo     *string       `db:"photo" json:"photo"`
	CoachID   string        `db:"coach_id" json:"-"`
	Coach     UserSummary   `db:"coach" json:"coach"`
	Members   []UserSummary `db:"-" json:"members"`
	IsActive  bool          `db:"is_active" json:"isActive"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

type TeamFilter struct {
	CoachID    string
	SearchText string
	IsActive   *bool
	Page       PageQuery
}

const (
	InvalidMemberNotFound  = "not_found"
	InvalidMemberNotPlayer = "not_player"
)

// InvalidMember names one rejected member id in a team create/update.
type InvalidMember struct {
	ID     string `json:"id"`
	Role   *Role  `json:"role,omitempty"`
	Reason string `json:"reason"`
}
