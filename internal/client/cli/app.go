package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/veristream/veristream-cli/internal/client/api"
	"github.com/veristream/veristream-cli/internal/client/config"
	"github.com/veristream/veristream-cli/internal/client/localstore"
	"github.com/veristream/veristream-cli/internal/client/models"
	"github.com/veristream/veristream-cli/internal/client/repositories/prefs"
	"github.com/veristream/veristream-cli/internal/client/store"
	"github.com/veristream/veristream-cli/internal/logging"
)

// stateStore is the slice of the store's surface the CLI drives. The real
// *store.Store satisfies it; tests can provide a stub.
type stateStore interface {
	Session() store.SessionState
	Language() string
	SetLanguage(ctx context.Context, lang string) error

	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, fields store.RegisterFields) error
	Logout(ctx context.Context) error
	CheckAuth(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, fields store.ResetPasswordFields) error

	LoadFeed(ctx context.Context, kind api.FeedKind) ([]models.Video, error)
	Like(ctx context.Context, videoID int64) error
	Unlike(ctx context.Context, videoID int64) error
	PostComment(ctx context.Context, videoID int64, text string) (models.Comment, error)

	Upload() store.UploadState
	UploadVideo(ctx context.Context, req store.UploadRequest, r io.Reader) error
	ResetUpload()

	Profile() store.ProfileState
	LoadProfile(ctx context.Context, userID int64) error
	ClearProfile()
	Follow(ctx context.Context, userID int64) error
	Unfollow(ctx context.Context, userID int64) error
	LoadFollowers(ctx context.Context, userID int64) ([]models.UserSummary, error)
	LoadFollowing(ctx context.Context, userID int64) ([]models.UserSummary, error)
}

// App wires the config, the local database, the API client and the state
// store together and exposes the interactive command handlers.
type App struct {
	config *config.Config
	store  stateStore
	log    logging.Logger
	db     *sql.DB
	reader *bufio.Reader
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := localstore.Open(ctx, c.DatabaseFile)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	var opts []api.Option
	if c.RequestsPerSecond > 0 {
		opts = append(opts, api.WithRateLimit(c.RequestsPerSecond, 1))
	}
	apiClient := api.NewHTTPClient(c.APIBaseURL, opts...)

	st, err := store.New(ctx, apiClient, prefs.NewSQLiteRepository(db), log,
		store.WithChunkSize(c.ChunkSize))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config: c,
		store:  st,
		log:    log,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run revalidates any restored credential and enters the REPL. It blocks
// until the user exits or the input stream ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	if err := a.store.CheckAuth(ctx); err == nil {
		printlnFn(fmt.Sprintf("Welcome back, %s!", a.store.Session().User.Username))
	}

	printlnFn("VeriStream CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.store.Session().IsAuthenticated
}

func (a *App) getStatus() string {
	sess := a.store.Session()
	if sess.User != nil && sess.IsAuthenticated {
		return fmt.Sprintf("(%s)", sess.User.Username)
	}
	return "(guest)"
}
