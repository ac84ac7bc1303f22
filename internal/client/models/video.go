package models

// Comment is a single comment on a video. Comments are ordered newest-first.
type Comment struct {
	ID        int64        `json:"id"`
	Text      string       `json:"text"`
	User      *UserSummary `json:"user,omitempty"`
	CreatedAt string       `json:"created_at,omitempty"`
}

// Video is one feed entry.
type Video struct {
	ID               int64        `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	VideoURL         string       `json:"video_url"`
	ThumbnailURL     string       `json:"thumbnail_url,omitempty"`
	LikeCount        int64        `json:"like_count"`
	IsLiked          bool         `json:"is_liked"`
	Comments         []Comment    `json:"comments"`
	CredibilityScore float64      `json:"credibility_score"`
	DurationSeconds  float64      `json:"duration_seconds"`
	User             *UserSummary `json:"user,omitempty"`
}

// Clone returns a deep copy of the video, including its comment list. The
// store snapshots a record before an optimistic patch so a failed mutation
// can be rolled back.
func (v Video) Clone() Video {
	c := v
	if v.Comments != nil {
		c.Comments = make([]Comment, len(v.Comments))
		copy(c.Comments, v.Comments)
	}
	if v.User != nil {
		u := v.User.Clone()
		c.User = &u
	}
	return c
}
