package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/veristream/veristream-cli/internal/client/api"
	"github.com/veristream/veristream-cli/internal/client/models"
)

// Feed loads and prints a feed. With no argument the global feed is shown;
// "following" and "discovery" select the personalized variants. Repeating
// the command for the same kind is served from the store's cache.
func (a *App) Feed(ctx context.Context, args []string) error {
	kind := api.FeedGlobal
	if len(args) > 0 {
		switch args[0] {
		case "global":
		case "following":
			kind = api.FeedFollowing
		case "discovery":
			kind = api.FeedDiscovery
		default:
			printlnFn("Unknown feed kind:", args[0])
			return nil
		}
	}

	videos, err := a.store.LoadFeed(ctx, kind)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	if len(videos) == 0 {
		printlnFn("The feed is empty.")
		return nil
	}
	for _, v := range videos {
		printlnFn(formatVideo(v))
	}
	return nil
}

// Like marks a video in the current feed as liked.
func (a *App) Like(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	if err := a.store.Like(ctx, id); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	printlnFn("Liked.")
	return nil
}

// Unlike removes a like from a video in the current feed.
func (a *App) Unlike(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	if err := a.store.Unlike(ctx, id); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	printlnFn("Unliked.")
	return nil
}

// Comment posts a comment on a video in the current feed. Everything after
// the video id is the comment text.
func (a *App) Comment(ctx context.Context, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	text := strings.Join(args[1:], " ")

	comment, err := a.store.PostComment(ctx, id, text)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("Comment #%d posted.", comment.ID))
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func formatVideo(v models.Video) string {
	liked := " "
	if v.IsLiked {
		liked = "*"
	}
	author := ""
	if v.User != nil {
		author = "@" + v.User.Username
	}
	return fmt.Sprintf("[%d]%s %-30s %s likes=%d comments=%d credibility=%.1f",
		v.ID, liked, v.Title, author, v.LikeCount, len(v.Comments), v.CredibilityScore)
}
