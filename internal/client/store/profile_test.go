package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veristream/veristream-cli/internal/client/api"
	"github.com/veristream/veristream-cli/internal/client/models"
)

func profileFixture() api.ProfileResult {
	return api.ProfileResult{
		User: models.UserSummary{
			ID: 2, Name: "Bob", Username: "bob",
			FollowersCount: 10, FollowingCount: 4,
		},
		Videos: []models.Video{{ID: 30, Title: "bob's clip"}},
		Likes:  77,
	}
}

func TestLoadProfile_ReplacesWholesale(t *testing.T) {
	fc := newFakeAPI()
	fc.ProfileRes = profileFixture()
	s := newTestStore(t, fc, newFakePrefs())

	require.NoError(t, s.LoadProfile(context.Background(), 2))

	p := s.Profile()
	require.Equal(t, int64(2), p.User.ID)
	require.Len(t, p.Videos, 1)
	require.Equal(t, int64(77), p.Likes)
	require.Nil(t, p.Error)
	require.False(t, p.Loading)
}

func TestLoadProfile_ErrorKeepsNoUser(t *testing.T) {
	fc := newFakeAPI()
	fc.ProfileErr = &api.Error{Status: 404, Message: "not found"}
	s := newTestStore(t, fc, newFakePrefs())

	require.Error(t, s.LoadProfile(context.Background(), 2))

	p := s.Profile()
	require.Nil(t, p.User, "no partially-hydrated profile")
	require.NotNil(t, p.Error)
}

func TestClearProfile_RestoresInitialState(t *testing.T) {
	fc := newFakeAPI()
	fc.ProfileRes = profileFixture()
	fc.FollowersRes = []models.UserSummary{{ID: 3}}
	s := newTestStore(t, fc, newFakePrefs())
	ctx := context.Background()

	require.NoError(t, s.LoadProfile(ctx, 2))
	_, err := s.LoadFollowers(ctx, 2)
	require.NoError(t, err)

	s.ClearProfile()

	require.Equal(t, ProfileState{}, s.Profile(), "cleared profile must be indistinguishable from a fresh store's")
}

func TestFollow_PatchesBothSidesAtomically(t *testing.T) {
	fc := newFakeAPI()
	fc.ProfileRes = profileFixture()
	fc.FollowRes = api.FollowResult{FollowersCount: 11, FollowingCount: 5}
	s := newTestStore(t, fc, newFakePrefs())
	loginAs(t, s, fc, models.UserSummary{ID: 1, Username: "ann", FollowingCount: 4})
	ctx := context.Background()

	require.NoError(t, s.LoadProfile(ctx, 2))
	require.NoError(t, s.Follow(ctx, 2))

	p := s.Profile()
	require.True(t, p.User.IsFollowing)
	require.Equal(t, int64(11), p.User.FollowersCount)

	me := s.Session().User
	require.Equal(t, int64(5), me.FollowingCount)
	require.Len(t, me.Following, 1)
	require.Equal(t, int64(2), me.Following[0].ID)
	require.Equal(t, "bob", me.Following[0].Username, "entry hydrated from the loaded profile")
}

func TestUnfollow_PatchesBothSides(t *testing.T) {
	fc := newFakeAPI()
	fixture := profileFixture()
	fixture.User.IsFollowing = true
	fixture.User.FollowersCount = 11
	fc.ProfileRes = fixture
	fc.UnfollowRes = api.FollowResult{FollowersCount: 10, FollowingCount: 4}
	s := newTestStore(t, fc, newFakePrefs())
	loginAs(t, s, fc, models.UserSummary{
		ID: 1, FollowingCount: 5,
		Following: []models.UserSummary{{ID: 2, Username: "bob"}},
	})
	ctx := context.Background()

	require.NoError(t, s.LoadProfile(ctx, 2))
	require.NoError(t, s.Unfollow(ctx, 2))

	p := s.Profile()
	require.False(t, p.User.IsFollowing)
	require.Equal(t, int64(10), p.User.FollowersCount)

	me := s.Session().User
	require.Equal(t, int64(4), me.FollowingCount)
	require.Empty(t, me.Following)
}

func TestFollow_ConflictIsIdempotentSuccess(t *testing.T) {
	fc := newFakeAPI()
	fc.ProfileRes = profileFixture()
	fc.FollowErr = conflictErr("already following")
	s := newTestStore(t, fc, newFakePrefs())
	loginAs(t, s, fc, models.UserSummary{ID: 1})
	ctx := context.Background()

	require.NoError(t, s.LoadProfile(ctx, 2))
	require.NoError(t, s.Follow(ctx, 2), "conflict means the desired state already holds")

	p := s.Profile()
	require.True(t, p.User.IsFollowing)
	require.Equal(t, int64(11), p.User.FollowersCount, "counter derived locally on conflict")
	require.Nil(t, p.FollowError)

	me := s.Session().User
	require.Len(t, me.Following, 1)
	require.Equal(t, int64(1), me.FollowingCount)
}

func TestUnfollow_ConflictIsIdempotentSuccess(t *testing.T) {
	fc := newFakeAPI()
	fixture := profileFixture()
	fixture.User.IsFollowing = true
	fc.ProfileRes = fixture
	fc.UnfollowErr = conflictErr("not following")
	s := newTestStore(t, fc, newFakePrefs())
	loginAs(t, s, fc, models.UserSummary{
		ID: 1, FollowingCount: 1,
		Following: []models.UserSummary{{ID: 2}},
	})
	ctx := context.Background()

	require.NoError(t, s.LoadProfile(ctx, 2))
	require.NoError(t, s.Unfollow(ctx, 2))

	p := s.Profile()
	require.False(t, p.User.IsFollowing)
	require.Equal(t, int64(9), p.User.FollowersCount)
	require.Nil(t, p.FollowError)

	me := s.Session().User
	require.Empty(t, me.Following)
	require.Zero(t, me.FollowingCount)
}

func TestFollow_ConflictPatchesUnhydratedFollowingCount(t *testing.T) {
	// Login carries following_count without the following list; the conflict
	// path must patch the count, not recompute it from the empty list.
	fc := newFakeAPI()
	fc.ProfileRes = profileFixture()
	fc.FollowErr = conflictErr("already following")
	s := newTestStore(t, fc, newFakePrefs())
	loginAs(t, s, fc, models.UserSummary{ID: 1, FollowingCount: 4})
	ctx := context.Background()

	require.NoError(t, s.LoadProfile(ctx, 2))
	require.NoError(t, s.Follow(ctx, 2))

	me := s.Session().User
	require.Equal(t, int64(5), me.FollowingCount)
	require.Len(t, me.Following, 1)
}

func TestUnfollow_ConflictLeavesUntrackedCountAlone(t *testing.T) {
	fc := newFakeAPI()
	fixture := profileFixture()
	fixture.User.IsFollowing = true
	fc.ProfileRes = fixture
	fc.UnfollowErr = conflictErr("not following")
	s := newTestStore(t, fc, newFakePrefs())
	loginAs(t, s, fc, models.UserSummary{ID: 1, FollowingCount: 4})
	ctx := context.Background()

	require.NoError(t, s.LoadProfile(ctx, 2))
	require.NoError(t, s.Unfollow(ctx, 2))

	me := s.Session().User
	require.Equal(t, int64(4), me.FollowingCount, "nothing tracked locally, nothing to decrement")
	require.Empty(t, me.Following)
}

func TestFollow_RequiresLogin(t *testing.T) {
	fc := newFakeAPI()
	s := newTestStore(t, fc, newFakePrefs())

	err := s.Follow(context.Background(), 2)
	require.ErrorIs(t, err, ErrValidation)
	require.NotNil(t, s.Profile().FollowError)
}

func TestFollow_SelfRejected(t *testing.T) {
	fc := newFakeAPI()
	s := newTestStore(t, fc, newFakePrefs())
	loginAs(t, s, fc, models.UserSummary{ID: 1})

	err := s.Follow(context.Background(), 1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestFollow_FailureLandsInFollowError(t *testing.T) {
	fc := newFakeAPI()
	fc.ProfileRes = profileFixture()
	fc.FollowErr = &api.Error{Status: 500, Message: "boom"}
	s := newTestStore(t, fc, newFakePrefs())
	loginAs(t, s, fc, models.UserSummary{ID: 1})
	ctx := context.Background()

	require.NoError(t, s.LoadProfile(ctx, 2))
	require.Error(t, s.Follow(ctx, 2))

	p := s.Profile()
	require.NotNil(t, p.FollowError, "follow failures use their own error channel")
	require.Nil(t, p.Error, "the profile view itself stays intact")
	require.False(t, p.User.IsFollowing)
	require.Equal(t, int64(10), p.User.FollowersCount)

	s.ResetFollowError()
	require.Nil(t, s.Profile().FollowError)
}

func TestLoadFollowers_And_Following(t *testing.T) {
	fc := newFakeAPI()
	fc.FollowersRes = []models.UserSummary{{ID: 3, Username: "carol"}}
	fc.FollowingRes = []models.UserSummary{{ID: 4, Username: "dave"}}
	s := newTestStore(t, fc, newFakePrefs())
	ctx := context.Background()

	followers, err := s.LoadFollowers(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "carol", followers[0].Username)

	following, err := s.LoadFollowing(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "dave", following[0].Username)

	p := s.Profile()
	require.Len(t, p.Followers, 1)
	require.Len(t, p.Following, 1)
}

func TestLoadFollowers_CanceledContextDiscardsResult(t *testing.T) {
	fc := newFakeAPI()
	fc.FollowersRes = []models.UserSummary{{ID: 3, Username: "carol"}}
	s := newTestStore(t, fc, newFakePrefs())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadFollowers(ctx, 2)
	require.ErrorIs(t, err, context.Canceled)

	p := s.Profile()
	require.Empty(t, p.Followers, "late result must not be folded into state")
	require.Nil(t, p.Error)
	require.False(t, p.Loading)
}

func TestLoadFollowing_CanceledContextDiscardsResult(t *testing.T) {
	fc := newFakeAPI()
	fc.FollowingRes = []models.UserSummary{{ID: 4, Username: "dave"}}
	s := newTestStore(t, fc, newFakePrefs())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadFollowing(ctx, 2)
	require.ErrorIs(t, err, context.Canceled)

	p := s.Profile()
	require.Empty(t, p.Following)
	require.Nil(t, p.Error)
	require.False(t, p.Loading)
}

// conflictErr builds an error carrying the conflict class the way the HTTP
// client's mapError does for a 409 response.
func conflictErr(msg string) error {
	return errors.Join(api.ErrConflict, &api.Error{Status: 409, Message: msg})
}
