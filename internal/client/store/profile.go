package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/veristream/veristream-cli/internal/client/api"
	"github.com/veristream/veristream-cli/internal/client/models"
)

// LoadProfile replaces the profile slice wholesale with the requested
// user's profile, videos and like total.
func (s *Store) LoadProfile(ctx context.Context, userID int64) error {
	s.mu.Lock()
	s.profile.Loading = true
	s.profile.Error = nil
	s.mu.Unlock()

	res, err := s.api.Profile(ctx, userID)
	if dropErr := s.dropLate(ctx, &s.profile.Loading); dropErr != nil {
		return dropErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.profile.Loading = false
		s.profile.Error = asAPIError(err)
		return err
	}

	u := res.User.Clone()
	s.profile = ProfileState{
		User:   &u,
		Videos: res.Videos,
		Likes:  res.Likes,
	}
	return nil
}

// ClearProfile resets the profile slice to its initial empty shape. Called
// on navigation away so the next profile never shows stale cross-user data.
func (s *Store) ClearProfile() {
	s.mu.Lock()
	s.profile = ProfileState{}
	s.mu.Unlock()
}

// ResetFollowError clears the follow error channel.
func (s *Store) ResetFollowError() {
	s.mu.Lock()
	s.profile.FollowError = nil
	s.mu.Unlock()
}

// Follow creates a follow relationship with userID. Both sides of the
// relationship are patched in one step under the store lock (the viewed
// profile's follower count and is_following flag, and the session user's
// following list and count), so no consumer can observe one update without
// the other. A 409 ("already following") is treated as idempotent success.
func (s *Store) Follow(ctx context.Context, userID int64) error {
	return s.setFollowing(ctx, userID, true)
}

// Unfollow removes the follow relationship. A 409 ("not following") is
// treated as idempotent success, mirroring Follow.
func (s *Store) Unfollow(ctx context.Context, userID int64) error {
	return s.setFollowing(ctx, userID, false)
}

func (s *Store) setFollowing(ctx context.Context, userID int64, following bool) error {
	s.mu.Lock()
	if !s.session.IsAuthenticated || s.session.User == nil {
		s.profile.FollowError = validationError("login required", nil)
		s.mu.Unlock()
		return fmt.Errorf("%w: login required", ErrValidation)
	}
	if s.session.User.ID == userID {
		s.profile.FollowError = validationError("cannot follow yourself", nil)
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	}
	s.profile.FollowLoading = true
	s.profile.FollowError = nil
	s.mu.Unlock()

	var res api.FollowResult
	var err error
	if following {
		res, err = s.api.Follow(ctx, userID)
	} else {
		res, err = s.api.Unfollow(ctx, userID)
	}
	if dropErr := s.dropLate(ctx, &s.profile.FollowLoading); dropErr != nil {
		return dropErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.FollowLoading = false

	if err != nil && !errors.Is(err, api.ErrConflict) {
		s.profile.FollowError = asAPIError(err)
		return err
	}

	conflict := err != nil
	s.applyFollowLocked(userID, following, res, conflict)
	return nil
}

// applyFollowLocked folds a follow/unfollow result into both affected
// slices. On a conflict the server reported the relationship already in the
// requested state, so counters are derived locally instead of from the
// (absent) response body. Callers must hold s.mu.
func (s *Store) applyFollowLocked(userID int64, following bool, res api.FollowResult, conflict bool) {
	// Viewed profile side.
	if s.profile.User != nil && s.profile.User.ID == userID {
		changed := s.profile.User.IsFollowing != following
		s.profile.User.IsFollowing = following
		if conflict {
			if changed {
				if following {
					s.profile.User.FollowersCount++
				} else if s.profile.User.FollowersCount > 0 {
					s.profile.User.FollowersCount--
				}
			}
		} else {
			s.profile.User.FollowersCount = res.FollowersCount
		}
	}

	// Session user side.
	me := s.session.User
	if me == nil {
		return
	}

	idx := -1
	for i := range me.Following {
		if me.Following[i].ID == userID {
			idx = i
			break
		}
	}
	changed := (following && idx < 0) || (!following && idx >= 0)

	if following && idx < 0 {
		entry := models.UserSummary{ID: userID}
		if s.profile.User != nil && s.profile.User.ID == userID {
			entry = models.UserSummary{
				ID:             userID,
				Name:           s.profile.User.Name,
				Username:       s.profile.User.Username,
				ProfilePicture: s.profile.User.ProfilePicture,
			}
		}
		me.Following = append(me.Following, entry)
	} else if !following && idx >= 0 {
		me.Following = append(me.Following[:idx], me.Following[idx+1:]...)
	}

	// The Following list is only a local approximation (login does not
	// hydrate it), so the count is patched, never recomputed from it.
	if conflict {
		if changed {
			if following {
				me.FollowingCount++
			} else if me.FollowingCount > 0 {
				me.FollowingCount--
			}
		}
	} else {
		me.FollowingCount = res.FollowingCount
	}
}

// LoadFollowers fetches the list of users following userID into the
// profile slice.
func (s *Store) LoadFollowers(ctx context.Context, userID int64) ([]models.UserSummary, error) {
	s.mu.Lock()
	s.profile.Loading = true
	s.profile.Error = nil
	s.mu.Unlock()

	users, err := s.api.Followers(ctx, userID)
	if dropErr := s.dropLate(ctx, &s.profile.Loading); dropErr != nil {
		return nil, dropErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Loading = false
	if err != nil {
		s.profile.Error = asAPIError(err)
		return nil, err
	}
	s.profile.Followers = users
	return cloneUsers(users), nil
}

// LoadFollowing fetches the list of users userID follows into the profile
// slice.
func (s *Store) LoadFollowing(ctx context.Context, userID int64) ([]models.UserSummary, error) {
	s.mu.Lock()
	s.profile.Loading = true
	s.profile.Error = nil
	s.mu.Unlock()

	users, err := s.api.Following(ctx, userID)
	if dropErr := s.dropLate(ctx, &s.profile.Loading); dropErr != nil {
		return nil, dropErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Loading = false
	if err != nil {
		s.profile.Error = asAPIError(err)
		return nil, err
	}
	s.profile.Following = users
	return cloneUsers(users), nil
}
