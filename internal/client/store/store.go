// Package store implements the client's application state: session, video
// feed, profile and upload slices, plus the actions that mutate them by
// calling the remote API.
//
// A Store is constructed exactly once at application start and passed by
// reference to consumers. Every action marks its slice loading while in
// flight and resolves to either a result or a structured error on that
// slice. Actions only touch their own slice; a mutex keeps snapshots
// consistent when actions overlap.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/veristream/veristream-cli/internal/client/api"
	"github.com/veristream/veristream-cli/internal/client/models"
	"github.com/veristream/veristream-cli/internal/client/repositories/prefs"
	"github.com/veristream/veristream-cli/internal/logging"
)

// ErrValidation marks failures caught before any request is made
// (missing fields, password mismatch). Field details are on the slice's
// Error value.
var ErrValidation = errors.New("validation failed")

// DefaultLanguage is used when no preference has been persisted yet.
const DefaultLanguage = "en"

// SessionState is the authentication slice.
//
// Invariant: Token is non-empty iff IsAuthenticated, at every action
// boundary. The one exception is bootstrap: a persisted token (and the
// user identity saved with it) is restored before CheckAuth has confirmed
// it, with IsAuthenticated still false; CheckAuth then either
// authenticates or purges it.
type SessionState struct {
	Token           string
	User            *models.UserSummary
	IsAuthenticated bool

	Loading bool
	Success bool
	Error   *api.Error
}

// FeedState is the video feed slice. A loaded feed acts as a single-entry
// read-through cache: while Loaded is set and Invalidated is not, LoadFeed
// for the same kind is served from memory without a network call.
type FeedState struct {
	Kind        api.FeedKind
	Videos      []models.Video
	Loaded      bool
	Invalidated bool

	Loading bool
	Error   *api.Error
}

// UploadPhase names the states of the chunked-upload pipeline.
type UploadPhase string

const (
	UploadIdle     UploadPhase = "idle"
	UploadSending  UploadPhase = "sending"
	UploadFailed   UploadPhase = "failed"
	UploadComplete UploadPhase = "complete"
)

// UploadState tracks a chunked upload. Progress runs 0–100, advanced one
// step per confirmed chunk. FailedChunk is the zero-based index of the
// chunk whose request failed, meaningful only in the failed phase.
type UploadState struct {
	Phase       UploadPhase
	ChunksSent  int
	TotalChunks int
	Progress    float64
	FailedChunk int

	Error *api.Error
}

// ProfileState is the viewed-profile slice. User is either nil (not loaded
// or cleared) or fully populated; no partially-hydrated state is exposed.
// Follow/unfollow failures land in FollowError so a conflict there does not
// blank the profile view.
type ProfileState struct {
	User      *models.UserSummary
	Videos    []models.Video
	Likes     int64
	Followers []models.UserSummary
	Following []models.UserSummary

	Loading       bool
	Error         *api.Error
	FollowLoading bool
	FollowError   *api.Error
}

// Store is the client state container.
type Store struct {
	api       api.Client
	prefs     prefs.Repository
	log       logging.Logger
	chunkSize int64

	mu       sync.Mutex
	session  SessionState
	feed     FeedState
	profile  ProfileState
	upload   UploadState
	language string
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithChunkSize overrides the upload chunk size (bytes). Values <= 0 are
// ignored.
func WithChunkSize(size int64) StoreOption {
	return func(s *Store) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// New constructs the Store and initializes it from durable storage: the
// persisted bearer token (installed into the API client, pending
// revalidation by CheckAuth) and the selected language. This is the only
// place durable state is read.
func New(ctx context.Context, client api.Client, prefsRepo prefs.Repository, log logging.Logger, opts ...StoreOption) (*Store, error) {
	s := &Store{
		api:       client,
		prefs:     prefsRepo,
		log:       log,
		chunkSize: 1 << 20,
		upload:    UploadState{Phase: UploadIdle},
		language:  DefaultLanguage,
	}
	for _, o := range opts {
		o(s)
	}

	token, err := prefsRepo.Get(ctx, prefs.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("restore token: %w", err)
	}
	if token != "" {
		s.session.Token = token
		s.api.SetToken(token)

		// The identity saved alongside the token prefills the session user
		// (still unauthenticated until CheckAuth confirms the credential).
		idStr, err := prefsRepo.Get(ctx, prefs.KeyUserID)
		if err != nil {
			return nil, fmt.Errorf("restore user: %w", err)
		}
		username, err := prefsRepo.Get(ctx, prefs.KeyUsername)
		if err != nil {
			return nil, fmt.Errorf("restore user: %w", err)
		}
		if id, convErr := strconv.ParseInt(idStr, 10, 64); convErr == nil && id > 0 {
			s.session.User = &models.UserSummary{ID: id, Username: username}
		}
	}

	lang, err := prefsRepo.Get(ctx, prefs.KeyLanguage)
	if err != nil {
		return nil, fmt.Errorf("restore language: %w", err)
	}
	if lang != "" {
		s.language = lang
	}

	return s, nil
}

// Session returns a consistent copy of the session slice.
func (s *Store) Session() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSession(s.session)
}

// Feed returns a consistent copy of the feed slice.
func (s *Store) Feed() FeedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneFeed(s.feed)
}

// Profile returns a consistent copy of the profile slice.
func (s *Store) Profile() ProfileState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProfile(s.profile)
}

// Upload returns a copy of the upload slice.
func (s *Store) Upload() UploadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upload
}

// Language returns the selected language preference.
func (s *Store) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage persists the language preference and updates the in-memory
// copy.
func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	if lang == "" {
		return fmt.Errorf("%w: language must not be empty", ErrValidation)
	}
	if err := s.prefs.Set(ctx, prefs.KeyLanguage, lang); err != nil {
		return err
	}

	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
	return nil
}

// asAPIError normalizes any action failure into the structured error shape
// attached to slices.
func asAPIError(err error) *api.Error {
	var e *api.Error
	if errors.As(err, &e) {
		return e
	}
	return &api.Error{Message: err.Error()}
}

func validationError(message string, fields map[string][]string) *api.Error {
	return &api.Error{Message: message, Fields: fields}
}

func cloneSession(in SessionState) SessionState {
	out := in
	if in.User != nil {
		u := in.User.Clone()
		out.User = &u
	}
	return out
}

func cloneVideos(in []models.Video) []models.Video {
	if in == nil {
		return nil
	}
	out := make([]models.Video, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func cloneUsers(in []models.UserSummary) []models.UserSummary {
	if in == nil {
		return nil
	}
	out := make([]models.UserSummary, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func cloneFeed(in FeedState) FeedState {
	out := in
	out.Videos = cloneVideos(in.Videos)
	return out
}

func cloneProfile(in ProfileState) ProfileState {
	out := in
	if in.User != nil {
		u := in.User.Clone()
		out.User = &u
	}
	out.Videos = cloneVideos(in.Videos)
	out.Followers = cloneUsers(in.Followers)
	out.Following = cloneUsers(in.Following)
	return out
}
