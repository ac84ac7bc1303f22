package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/veristream/veristream-cli/internal/client/api"
	"github.com/veristream/veristream-cli/internal/client/models"
)

// LoadFeed returns the requested feed, serving from the in-memory copy when
// the same kind is already loaded and has not been invalidated. On a miss
// it fetches, replaces the cached copy and clears the invalidated flag.
// The following and discovery variants require an authenticated session
// (they are keyed by the current user id).
func (s *Store) LoadFeed(ctx context.Context, kind api.FeedKind) ([]models.Video, error) {
	s.mu.Lock()
	if s.feed.Loaded && s.feed.Kind == kind && !s.feed.Invalidated {
		videos := cloneVideos(s.feed.Videos)
		s.mu.Unlock()
		return videos, nil
	}

	var userID int64
	if s.session.User != nil {
		userID = s.session.User.ID
	}
	if kind != api.FeedGlobal && userID == 0 {
		apiErr := validationError("login required for this feed", nil)
		s.feed.Error = apiErr
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrValidation, apiErr.Message)
	}

	s.feed.Loading = true
	s.feed.Error = nil
	s.mu.Unlock()

	videos, err := s.api.Feed(ctx, kind, userID)
	if dropErr := s.dropLate(ctx, &s.feed.Loading); dropErr != nil {
		return nil, dropErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.Loading = false
	if err != nil {
		s.feed.Error = asAPIError(err)
		return nil, err
	}

	s.feed.Kind = kind
	s.feed.Videos = videos
	s.feed.Loaded = true
	s.feed.Invalidated = false
	s.log.Debug(ctx, "feed loaded", "kind", string(kind), "videos", len(videos))
	return cloneVideos(videos), nil
}

// InvalidateFeed marks the cached feed as unfit to serve; the next LoadFeed
// refetches.
func (s *Store) InvalidateFeed() {
	s.mu.Lock()
	s.feed.Invalidated = true
	s.mu.Unlock()
}

// ResetFeedError clears the feed slice's error.
func (s *Store) ResetFeedError() {
	s.mu.Lock()
	s.feed.Error = nil
	s.mu.Unlock()
}

// Like marks the video liked, patching the cached record in place before
// the request resolves. The record is snapshotted first and restored if the
// request fails, so is_liked and like_count never diverge. When the server
// returns an authoritative likes_count it wins over local arithmetic.
// Liking an already-liked video is a local no-op.
func (s *Store) Like(ctx context.Context, videoID int64) error {
	return s.setLiked(ctx, videoID, true)
}

// Unlike is the inverse of Like, with the same snapshot/rollback contract.
func (s *Store) Unlike(ctx context.Context, videoID int64) error {
	return s.setLiked(ctx, videoID, false)
}

func (s *Store) setLiked(ctx context.Context, videoID int64, liked bool) error {
	s.mu.Lock()
	idx := s.findVideo(videoID)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: video %d not in feed", ErrValidation, videoID)
	}
	if s.feed.Videos[idx].IsLiked == liked {
		s.mu.Unlock()
		return nil
	}

	snapshot := s.feed.Videos[idx].Clone()

	// Optimistic patch; both fields together, never one without the other.
	s.feed.Videos[idx].IsLiked = liked
	if liked {
		s.feed.Videos[idx].LikeCount++
	} else if s.feed.Videos[idx].LikeCount > 0 {
		s.feed.Videos[idx].LikeCount--
	}
	s.mu.Unlock()

	var res api.LikeResult
	var err error
	if liked {
		res, err = s.api.Like(ctx, videoID)
	} else {
		res, err = s.api.Unlike(ctx, videoID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx = s.findVideo(videoID)

	if err != nil {
		// Roll the optimistic patch back, unless the feed was replaced
		// underneath us.
		if idx >= 0 {
			s.feed.Videos[idx] = snapshot
		}
		s.feed.Error = asAPIError(err)
		return err
	}

	if idx >= 0 && res.LikesCount != nil {
		s.feed.Videos[idx].LikeCount = *res.LikesCount
	}
	return nil
}

// PostComment submits a comment and prepends the server-returned record to
// the video's comment list (newest-first). There is no optimistic insert,
// so a failure leaves the list untouched.
func (s *Store) PostComment(ctx context.Context, videoID int64, text string) (models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return models.Comment{}, fmt.Errorf("%w: comment must not be empty", ErrValidation)
	}

	s.mu.Lock()
	if s.findVideo(videoID) < 0 {
		s.mu.Unlock()
		return models.Comment{}, fmt.Errorf("%w: video %d not in feed", ErrValidation, videoID)
	}
	s.mu.Unlock()

	comment, err := s.api.Comment(ctx, videoID, text)
	if err != nil {
		s.mu.Lock()
		s.feed.Error = asAPIError(err)
		s.mu.Unlock()
		return models.Comment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.findVideo(videoID); idx >= 0 {
		v := &s.feed.Videos[idx]
		v.Comments = append([]models.Comment{comment}, v.Comments...)
	}
	return comment, nil
}

// findVideo returns the index of the video in the cached feed, or -1.
// Callers must hold s.mu.
func (s *Store) findVideo(videoID int64) int {
	for i := range s.feed.Videos {
		if s.feed.Videos[i].ID == videoID {
			return i
		}
	}
	return -1
}
