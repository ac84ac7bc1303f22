package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Feed(ctx context.Context, args []string) error
	Like(ctx context.Context, args []string) error
	Unlike(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	Upload(ctx context.Context) error
	Profile(ctx context.Context, args []string) error
	Follow(ctx context.Context, args []string) error
	Unfollow(ctx context.Context, args []string) error
	Followers(ctx context.Context, args []string) error
	Following(ctx context.Context, args []string) error
	Lang(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the VeriStream CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                   — show available commands
//	  - register               — create an account
//	  - login                  — authenticate
//	  - forgot                 — request a password reset email
//	  - reset                  — reset the password with an emailed token
//	  - feed [kind]            — browse the global feed
//	  - profile <id>           — view a profile
//	  - exit | quit            — leave the program
//
//	Logged in additionally:
//	  - feed following|discovery — personalized feeds
//	  - like <id> | unlike <id>  — toggle a like
//	  - comment <id> <text>      — comment on a video
//	  - upload                   — upload a video (interactive prompts)
//	  - follow <id> | unfollow <id>
//	  - followers <id> | following <id>
//	  - lang <code>              — switch the interface language
//	  - logout
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vs> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (f)eed [global|following|discovery], like <id>, unlike <id>, comment <id> <text>, upload, profile <id>, follow <id>, unfollow <id>, followers <id>, following <id>, lang <code>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, forgot, reset, feed, profile <id>, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "f", "feed":
			_ = a.Feed(ctx, args)

		case "like":
			if len(args) == 0 {
				printlnFn("Usage: like <video id>")
				continue
			}
			_ = a.Like(ctx, args)

		case "unlike":
			if len(args) == 0 {
				printlnFn("Usage: unlike <video id>")
				continue
			}
			_ = a.Unlike(ctx, args)

		case "comment":
			if len(args) < 2 {
				printlnFn("Usage: comment <video id> <text>")
				continue
			}
			_ = a.Comment(ctx, args)

		case "upload":
			_ = a.Upload(ctx)

		case "profile":
			if len(args) == 0 {
				printlnFn("Usage: profile <user id>")
				continue
			}
			_ = a.Profile(ctx, args)

		case "follow":
			if len(args) == 0 {
				printlnFn("Usage: follow <user id>")
				continue
			}
			_ = a.Follow(ctx, args)

		case "unfollow":
			if len(args) == 0 {
				printlnFn("Usage: unfollow <user id>")
				continue
			}
			_ = a.Unfollow(ctx, args)

		case "followers":
			if len(args) == 0 {
				printlnFn("Usage: followers <user id>")
				continue
			}
			_ = a.Followers(ctx, args)

		case "following":
			if len(args) == 0 {
				printlnFn("Usage: following <user id>")
				continue
			}
			_ = a.Following(ctx, args)

		case "lang":
			if len(args) == 0 {
				printlnFn("Usage: lang <code>")
				continue
			}
			_ = a.Lang(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
