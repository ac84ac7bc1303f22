// Package models defines the wire-level records exchanged with the
// VeriStream API. JSON tags follow the server's field names exactly.
package models

// UserSummary is the compact user record embedded in sessions, videos and
// profiles.
type UserSummary struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Username       string        `json:"username"`
	Email          string        `json:"email,omitempty"`
	Bio            string        `json:"bio,omitempty"`
	ProfilePicture string        `json:"profile_picture,omitempty"`
	UserType       string        `json:"user_type,omitempty"`
	FollowersCount int64         `json:"followers_count"`
	FollowingCount int64         `json:"following_count"`
	Following      []UserSummary `json:"following,omitempty"`
	IsFollowing    bool          `json:"is_following,omitempty"`
}

// Clone returns a deep copy so state snapshots cannot alias the original's
// Following slice.
func (u UserSummary) Clone() UserSummary {
	c := u
	if u.Following != nil {
		c.Following = make([]UserSummary, len(u.Following))
		copy(c.Following, u.Following)
	}
	return c
}
