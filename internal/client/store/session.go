package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/veristream/veristream-cli/internal/client/api"
	"github.com/veristream/veristream-cli/internal/client/models"
	"github.com/veristream/veristream-cli/internal/client/repositories/prefs"
)

// Login authenticates with email/password. On success the token and user
// summary are stored, the session is marked authenticated and the token is
// persisted durably. On failure a structured error is recorded and the
// session stays unauthenticated.
//
// Duplicate concurrent submissions are not deduplicated; the Loading flag
// is the caller's in-flight signal.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	s.session.Loading = true
	s.session.Error = nil
	s.mu.Unlock()

	res, err := s.api.Login(ctx, email, password)
	if dropErr := s.dropLate(ctx, &s.session.Loading); dropErr != nil {
		return dropErr
	}
	if err != nil {
		s.mu.Lock()
		s.session.Loading = false
		s.session.Error = asAPIError(err)
		s.session.IsAuthenticated = false
		s.mu.Unlock()
		return err
	}

	return s.establishSession(ctx, res.Token, res.User)
}

// OAuthCallback accepts a token/user pair delivered via redirect parameters
// instead of a credential form. Post-conditions match Login.
func (s *Store) OAuthCallback(ctx context.Context, token string, user models.UserSummary) error {
	if token == "" {
		s.mu.Lock()
		s.session.Error = validationError("missing token", nil)
		s.mu.Unlock()
		return fmt.Errorf("%w: missing token", ErrValidation)
	}
	return s.establishSession(ctx, token, user)
}

// establishSession persists the credential plus the user's identity in one
// transaction and folds the authenticated user into the session slice.
func (s *Store) establishSession(ctx context.Context, token string, user models.UserSummary) error {
	err := s.prefs.SetMany(ctx, map[string]string{
		prefs.KeyToken:    token,
		prefs.KeyUserID:   strconv.FormatInt(user.ID, 10),
		prefs.KeyUsername: user.Username,
	})
	if err != nil {
		// The session is still usable for this run; it just will not
		// survive a restart.
		s.log.Warn(ctx, "persist token failed", "error", err)
	}
	s.api.SetToken(token)

	s.mu.Lock()
	s.session.Loading = false
	s.session.Token = token
	u := user.Clone()
	s.session.User = &u
	s.session.IsAuthenticated = true
	s.session.Success = true
	s.session.Error = nil
	s.mu.Unlock()

	s.log.Info(ctx, "session established", "user", user.ID)
	return nil
}

// RegisterFields carries the registration form into Register.
type RegisterFields struct {
	Name                 string
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
	UserType             string
}

// Register creates an account. Required fields and the password
// confirmation are validated locally first; validation failures never
// reach the network. Success sets the Success flag only; the user still
// logs in separately. Server-side field errors surface verbatim.
func (s *Store) Register(ctx context.Context, fields RegisterFields) error {
	if apiErr := validateRegister(fields); apiErr != nil {
		s.mu.Lock()
		s.session.Error = apiErr
		s.session.Success = false
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrValidation, apiErr.Message)
	}

	s.mu.Lock()
	s.session.Loading = true
	s.session.Error = nil
	s.session.Success = false
	s.mu.Unlock()

	_, err := s.api.Register(ctx, api.RegisterRequest{
		Name:                 fields.Name,
		Username:             fields.Username,
		Email:                fields.Email,
		Password:             fields.Password,
		PasswordConfirmation: fields.PasswordConfirmation,
		UserType:             fields.UserType,
	})
	if dropErr := s.dropLate(ctx, &s.session.Loading); dropErr != nil {
		return dropErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Loading = false
	if err != nil {
		s.session.Error = asAPIError(err)
		return err
	}
	s.session.Success = true
	return nil
}

func validateRegister(fields RegisterFields) *api.Error {
	missing := map[string][]string{}
	for name, value := range map[string]string{
		"name":     fields.Name,
		"username": fields.Username,
		"email":    fields.Email,
		"password": fields.Password,
	} {
		if strings.TrimSpace(value) == "" {
			missing[name] = []string{"required"}
		}
	}
	if len(missing) > 0 {
		return validationError("missing required fields", missing)
	}
	if fields.Password != fields.PasswordConfirmation {
		return validationError("passwords do not match", map[string][]string{
			"password_confirmation": {"passwords do not match"},
		})
	}
	return nil
}

// CheckAuth revalidates a persisted token against the server at bootstrap.
// This is the only path that silently downgrades a stale session: on a
// 401-class rejection (or a token whose JWT exp claim has already passed,
// checked locally without a request) the credential is purged everywhere.
// Transport failures leave the stored credential in place.
func (s *Store) CheckAuth(ctx context.Context) error {
	s.mu.Lock()
	token := s.session.Token
	s.mu.Unlock()

	if token == "" {
		s.mu.Lock()
		s.session.Error = &api.Error{Message: "no token found"}
		s.session.IsAuthenticated = false
		s.mu.Unlock()
		return api.ErrUnauthorized
	}

	// Opaque tokens skip this and go straight to the server.
	if tokenExpiredLocally(token) {
		s.purgeCredential(ctx)
		s.mu.Lock()
		s.session.Error = &api.Error{Message: "session expired, please login again"}
		s.mu.Unlock()
		return api.ErrUnauthorized
	}

	s.mu.Lock()
	s.session.Loading = true
	s.mu.Unlock()

	user, err := s.api.CurrentSession(ctx)
	if dropErr := s.dropLate(ctx, &s.session.Loading); dropErr != nil {
		return dropErr
	}
	if err != nil {
		if isUnauthorized(err) {
			s.purgeCredential(ctx)
		}
		s.mu.Lock()
		s.session.Loading = false
		s.session.Error = asAPIError(err)
		s.session.IsAuthenticated = false
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.session.Loading = false
	u := user.Clone()
	s.session.User = &u
	s.session.IsAuthenticated = true
	s.session.Error = nil
	s.mu.Unlock()
	return nil
}

// Logout unconditionally clears the session and removes the durable
// credential. Idempotent.
func (s *Store) Logout(ctx context.Context) error {
	err := s.deleteCredential(ctx)

	s.api.SetToken("")
	s.mu.Lock()
	s.session = SessionState{}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("remove stored token: %w", err)
	}
	return nil
}

// ResetAuthState clears the session slice's error and success flags.
// Errors are never auto-cleared by time or unrelated actions; this is the
// explicit reset.
func (s *Store) ResetAuthState() {
	s.mu.Lock()
	s.session.Error = nil
	s.session.Success = false
	s.mu.Unlock()
}

// ForgotPassword requests a password-reset email.
func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		s.mu.Lock()
		s.session.Error = validationError("missing required fields", map[string][]string{"email": {"required"}})
		s.mu.Unlock()
		return fmt.Errorf("%w: email required", ErrValidation)
	}

	s.mu.Lock()
	s.session.Loading = true
	s.session.Error = nil
	s.session.Success = false
	s.mu.Unlock()

	err := s.api.ForgotPassword(ctx, email)
	if dropErr := s.dropLate(ctx, &s.session.Loading); dropErr != nil {
		return dropErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Loading = false
	if err != nil {
		s.session.Error = asAPIError(err)
		return err
	}
	s.session.Success = true
	return nil
}

// ResetPasswordFields carries the reset-password form.
type ResetPasswordFields struct {
	Email                string
	Password             string
	PasswordConfirmation string
	Token                string
}

// ResetPassword completes a password reset using the emailed token. The
// confirmation must match locally before any request is made.
func (s *Store) ResetPassword(ctx context.Context, fields ResetPasswordFields) error {
	if fields.Password != fields.PasswordConfirmation {
		apiErr := validationError("passwords do not match", map[string][]string{
			"password_confirmation": {"passwords do not match"},
		})
		s.mu.Lock()
		s.session.Error = apiErr
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrValidation, apiErr.Message)
	}

	s.mu.Lock()
	s.session.Loading = true
	s.session.Error = nil
	s.session.Success = false
	s.mu.Unlock()

	err := s.api.ResetPassword(ctx, api.ResetPasswordRequest{
		Email:                fields.Email,
		Password:             fields.Password,
		PasswordConfirmation: fields.PasswordConfirmation,
		Token:                fields.Token,
	})
	if dropErr := s.dropLate(ctx, &s.session.Loading); dropErr != nil {
		return dropErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Loading = false
	if err != nil {
		s.session.Error = asAPIError(err)
		return err
	}
	s.session.Success = true
	return nil
}

// purgeCredential removes the bearer token and the stored user identity
// from memory, the API client and durable storage.
func (s *Store) purgeCredential(ctx context.Context) {
	if err := s.deleteCredential(ctx); err != nil {
		s.log.Warn(ctx, "remove stored credential failed", "error", err)
	}
	s.api.SetToken("")

	s.mu.Lock()
	s.session.Token = ""
	s.session.User = nil
	s.session.IsAuthenticated = false
	s.mu.Unlock()
}

func (s *Store) deleteCredential(ctx context.Context) error {
	for _, key := range []string{prefs.KeyToken, prefs.KeyUserID, prefs.KeyUsername} {
		if err := s.prefs.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// dropLate discards a response that arrived after the caller's context
// ended: the loading flag is cleared but no result is folded into state.
func (s *Store) dropLate(ctx context.Context, loading *bool) error {
	if ctx.Err() == nil {
		return nil
	}
	s.mu.Lock()
	*loading = false
	s.mu.Unlock()
	return ctx.Err()
}

// tokenExpiredLocally reports whether the token is a JWT whose exp claim
// has already passed. Opaque (non-JWT) tokens and tokens without exp
// return false.
func tokenExpiredLocally(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func isUnauthorized(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}
