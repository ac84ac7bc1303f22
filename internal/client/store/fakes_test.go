package store

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veristream/veristream-cli/internal/client/api"
	"github.com/veristream/veristream-cli/internal/client/models"
	"github.com/veristream/veristream-cli/internal/logging"
)

// ---- fake API client ----

// fakeAPI implements api.Client for unit tests. Result and error fields
// configure behavior; call counters and Last* fields allow assertions.
type fakeAPI struct {
	mu    sync.Mutex
	token string

	LoginRes   api.LoginResult
	LoginErr   error
	LoginCalls int

	RegisterErr   error
	RegisterCalls int
	LastRegister  api.RegisterRequest

	SessionUser  models.UserSummary
	SessionErr   error
	SessionCalls int

	ForgotErr error
	ResetErr  error

	FeedRes      []models.Video
	FeedErr      error
	FeedCalls    int
	LastFeedKind api.FeedKind
	LastFeedUser int64

	UploadErr    error
	UploadFailAt int // chunk index that fails; -1 = never
	Uploaded     []api.ChunkUpload

	LikeRes   api.LikeResult
	LikeErr   error
	UnlikeRes api.LikeResult
	UnlikeErr error

	CommentRes      models.Comment
	CommentErr      error
	CommentCalls    int
	LastCommentText string

	ProfileRes api.ProfileResult
	ProfileErr error

	FollowRes   api.FollowResult
	FollowErr   error
	UnfollowRes api.FollowResult
	UnfollowErr error

	FollowersRes []models.UserSummary
	FollowingRes []models.UserSummary
	ListErr      error
}

func newFakeAPI() *fakeAPI { return &fakeAPI{UploadFailAt: -1} }

func (f *fakeAPI) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeAPI) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (api.LoginResult, error) {
	f.LoginCalls++
	return f.LoginRes, f.LoginErr
}

func (f *fakeAPI) Register(ctx context.Context, req api.RegisterRequest) (models.UserSummary, error) {
	f.RegisterCalls++
	f.LastRegister = req
	return models.UserSummary{}, f.RegisterErr
}

func (f *fakeAPI) CurrentSession(ctx context.Context) (models.UserSummary, error) {
	f.SessionCalls++
	return f.SessionUser, f.SessionErr
}

func (f *fakeAPI) ForgotPassword(ctx context.Context, email string) error { return f.ForgotErr }

func (f *fakeAPI) ResetPassword(ctx context.Context, req api.ResetPasswordRequest) error {
	return f.ResetErr
}

func (f *fakeAPI) Feed(ctx context.Context, kind api.FeedKind, userID int64) ([]models.Video, error) {
	f.FeedCalls++
	f.LastFeedKind = kind
	f.LastFeedUser = userID
	if f.FeedErr != nil {
		return nil, f.FeedErr
	}
	out := make([]models.Video, len(f.FeedRes))
	for i := range f.FeedRes {
		out[i] = f.FeedRes[i].Clone()
	}
	return out, nil
}

func (f *fakeAPI) UploadChunk(ctx context.Context, chunk api.ChunkUpload) error {
	if f.UploadFailAt >= 0 && chunk.Index == f.UploadFailAt {
		return f.UploadErr
	}
	f.Uploaded = append(f.Uploaded, chunk)
	return nil
}

func (f *fakeAPI) Like(ctx context.Context, videoID int64) (api.LikeResult, error) {
	return f.LikeRes, f.LikeErr
}

func (f *fakeAPI) Unlike(ctx context.Context, videoID int64) (api.LikeResult, error) {
	return f.UnlikeRes, f.UnlikeErr
}

func (f *fakeAPI) Comment(ctx context.Context, videoID int64, text string) (models.Comment, error) {
	f.CommentCalls++
	f.LastCommentText = text
	return f.CommentRes, f.CommentErr
}

func (f *fakeAPI) Profile(ctx context.Context, userID int64) (api.ProfileResult, error) {
	return f.ProfileRes, f.ProfileErr
}

func (f *fakeAPI) Follow(ctx context.Context, userID int64) (api.FollowResult, error) {
	return f.FollowRes, f.FollowErr
}

func (f *fakeAPI) Unfollow(ctx context.Context, userID int64) (api.FollowResult, error) {
	return f.UnfollowRes, f.UnfollowErr
}

func (f *fakeAPI) Followers(ctx context.Context, userID int64) ([]models.UserSummary, error) {
	return f.FollowersRes, f.ListErr
}

func (f *fakeAPI) Following(ctx context.Context, userID int64) ([]models.UserSummary, error) {
	return f.FollowingRes, f.ListErr
}

// ---- fake prefs repository ----

type fakePrefs struct {
	mu     sync.Mutex
	values map[string]string

	GetErr error
	SetErr error
	DelErr error
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{values: map[string]string{}}
}

func (f *fakePrefs) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return "", f.GetErr
	}
	return f.values[key], nil
}

func (f *fakePrefs) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.values[key] = value
	return nil
}

func (f *fakePrefs) SetMany(ctx context.Context, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	for k, v := range values {
		f.values[k] = v
	}
	return nil
}

func (f *fakePrefs) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DelErr != nil {
		return f.DelErr
	}
	delete(f.values, key)
	return nil
}

func (f *fakePrefs) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = map[string]string{}
	return nil
}

func (f *fakePrefs) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[key]
	return ok
}

// ---- helpers ----

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestStore(t *testing.T, fc *fakeAPI, fp *fakePrefs, opts ...StoreOption) *Store {
	t.Helper()
	s, err := New(context.Background(), fc, fp, discardLogger(), opts...)
	require.NoError(t, err)
	return s
}

// loginAs puts the store into an authenticated state via the normal login
// path.
func loginAs(t *testing.T, s *Store, fc *fakeAPI, user models.UserSummary) {
	t.Helper()
	fc.LoginRes = api.LoginResult{Token: "T1", User: user}
	require.NoError(t, s.Login(context.Background(), user.Email, "secret1"))
}
