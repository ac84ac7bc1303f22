package cli

import (
	"context"
	"fmt"

	"github.com/veristream/veristream-cli/internal/client/models"
)

// Profile loads and prints a user's profile with their videos and like
// total. The previously viewed profile is cleared first so an error never
// leaves another user's data on screen.
func (a *App) Profile(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	a.store.ClearProfile()
	if err := a.store.LoadProfile(ctx, id); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	p := a.store.Profile()
	u := p.User
	following := ""
	if u.IsFollowing {
		following = " [following]"
	}
	printlnFn(fmt.Sprintf("@%s (%s)%s", u.Username, u.Name, following))
	if u.Bio != "" {
		printlnFn(u.Bio)
	}
	printlnFn(fmt.Sprintf("followers=%d following=%d total likes=%d",
		u.FollowersCount, u.FollowingCount, p.Likes))
	for _, v := range p.Videos {
		printlnFn(formatVideo(v))
	}
	return nil
}

// Follow starts following a user. Both the viewed profile and the session
// user's counters update together.
func (a *App) Follow(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	if err := a.store.Follow(ctx, id); err != nil {
		a.printFollowError(err)
		return err
	}
	printlnFn("Following.")
	return nil
}

// Unfollow stops following a user.
func (a *App) Unfollow(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	if err := a.store.Unfollow(ctx, id); err != nil {
		a.printFollowError(err)
		return err
	}
	printlnFn("Unfollowed.")
	return nil
}

// Followers prints the users following the given user.
func (a *App) Followers(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	users, err := a.store.LoadFollowers(ctx, id)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	printUsers(users)
	return nil
}

// Following prints the users the given user follows.
func (a *App) Following(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	users, err := a.store.LoadFollowing(ctx, id)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	printUsers(users)
	return nil
}

// Lang switches the interface language preference; the choice is persisted
// locally and survives restarts.
func (a *App) Lang(ctx context.Context, args []string) error {
	if err := a.store.SetLanguage(ctx, args[0]); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	printlnFn("Language set to", a.store.Language())
	return nil
}

func (a *App) printFollowError(err error) {
	if e := a.store.Profile().FollowError; e != nil {
		printlnFn("Error:", e.Message)
		return
	}
	printlnFn("Error:", err.Error())
}

func printUsers(users []models.UserSummary) {
	if len(users) == 0 {
		printlnFn("Nobody here yet.")
		return
	}
	for _, u := range users {
		printlnFn(fmt.Sprintf("[%d] @%s (%s)", u.ID, u.Username, u.Name))
	}
}
