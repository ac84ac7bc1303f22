// Package api implements the VeriStream REST client. The Client interface
// is the store's only boundary with the network; the HTTP implementation
// lives in httpclient.go.
package api

import (
	"context"

	"github.com/veristream/veristream-cli/internal/client/models"
)

// FeedKind selects which video feed variant to request.
type FeedKind string

const (
	FeedGlobal    FeedKind = "global"
	FeedFollowing FeedKind = "following"
	FeedDiscovery FeedKind = "discovery"
)

// LoginResult is the payload of a successful POST /login.
type LoginResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// RegisterRequest carries the registration form. Field names follow the
// server contract; PasswordConfirmation must equal Password (the store
// validates this before any request is made).
type RegisterRequest struct {
	Name                 string `json:"name"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	UserType             string `json:"user_type"`
}

// ResetPasswordRequest carries the reset-password form, including the
// emailed reset token.
type ResetPasswordRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Token                string `json:"token"`
}

// LikeResult is the payload of POST /like/{id} and /unlike/{id}. LikesCount
// is nil when the server omits the authoritative count.
type LikeResult struct {
	LikesCount *int64 `json:"likes_count"`
}

// ProfileResult is the payload of GET /profile/{id}.
type ProfileResult struct {
	User   models.UserSummary `json:"user"`
	Videos []models.Video     `json:"videos"`
	Likes  int64              `json:"likes"`
}

// FollowResult is the payload of POST /follow/{id} and /unfollow/{id}.
// Both counters refer to the relationship just mutated: FollowersCount is
// the viewed profile's follower total, FollowingCount the caller's
// following total.
type FollowResult struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// ChunkUpload is one byte range of a chunked video upload, plus the
// metadata repeated on every chunk. ThumbnailURL is only sent on chunk 0.
type ChunkUpload struct {
	Data         []byte
	Filename     string
	Index        int
	Total        int
	Title        string
	Description  string
	Location     string
	ThumbnailURL string
}

// Client is the remote API surface the store depends on.
//
// Contract:
//   - All methods honor context cancellation.
//   - Transport failures map to ErrUnavailable, 401-class responses to
//     ErrUnauthorized, 409 to ErrConflict; other failures carry *Error.
//   - SetToken("") clears the bearer credential.
type Client interface {
	SetToken(token string)

	Login(ctx context.Context, email, password string) (LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) (models.UserSummary, error)
	CurrentSession(ctx context.Context) (models.UserSummary, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error

	Feed(ctx context.Context, kind FeedKind, userID int64) ([]models.Video, error)
	UploadChunk(ctx context.Context, chunk ChunkUpload) error
	Like(ctx context.Context, videoID int64) (LikeResult, error)
	Unlike(ctx context.Context, videoID int64) (LikeResult, error)
	Comment(ctx context.Context, videoID int64, text string) (models.Comment, error)

	Profile(ctx context.Context, userID int64) (ProfileResult, error)
	Follow(ctx context.Context, userID int64) (FollowResult, error)
	Unfollow(ctx context.Context, userID int64) (FollowResult, error)
	Followers(ctx context.Context, userID int64) ([]models.UserSummary, error)
	Following(ctx context.Context, userID int64) ([]models.UserSummary, error)
}
