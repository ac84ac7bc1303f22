package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/veristream/veristream-cli/internal/client/api"
	"github.com/veristream/veristream-cli/internal/client/store"
	"github.com/veristream/veristream-cli/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the registration form and attempts to create a new
// account. Passwords are read without echo and wiped before returning.
// Validation failures (missing fields, password mismatch) are caught in the
// store before any request is made; field problems are printed per field.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	userType, err := getSimpleText(a.reader, "Account type (viewer/creator, empty for viewer)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword(os.Stdout, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	err = a.store.Register(ctx, store.RegisterFields{
		Name:                 name,
		Username:             username,
		Email:                email,
		Password:             string(password),
		PasswordConfirmation: string(confirmation),
		UserType:             userType,
	})
	if err != nil {
		a.printAuthError()
		return err
	}

	printlnFn("Account created, you can log in now.")
	return nil
}

// Login prompts for credentials and authenticates. On success the bearer
// token is persisted by the store, so the session survives restarts.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.store.Login(ctx, email, string(password)); err != nil {
		if errors.Is(err, api.ErrUnavailable) {
			printlnFn("Server unavailable, try again later.")
		} else {
			a.printAuthError()
		}
		return err
	}

	printlnFn(fmt.Sprintf("Logged in as %s", a.store.Session().User.Username))
	return nil
}

// Logout drops the session and the persisted token. Safe to call when not
// logged in.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err.Error())
		return err
	}
	printlnFn("Logged out.")
	return nil
}

// ForgotPassword requests a password reset email.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.store.ForgotPassword(ctx, email); err != nil {
		a.printAuthError()
		return err
	}
	printlnFn("If the address is registered, a reset email is on its way.")
	return nil
}

// ResetPassword completes a password reset with the emailed token.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	token, err := getSimpleText(a.reader, "Enter reset token from the email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword(os.Stdout, "Confirm new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	err = a.store.ResetPassword(ctx, store.ResetPasswordFields{
		Email:                email,
		Password:             string(password),
		PasswordConfirmation: string(confirmation),
		Token:                token,
	})
	if err != nil {
		a.printAuthError()
		return err
	}
	printlnFn("Password updated, log in with the new one.")
	return nil
}

// printAuthError renders the session slice's error, including per-field
// problems the server reported.
func (a *App) printAuthError() {
	e := a.store.Session().Error
	if e == nil {
		return
	}
	printlnFn("Error:", e.Message)
	for field, problems := range e.Fields {
		for _, p := range problems {
			printlnFn(fmt.Sprintf("  %s: %s", field, p))
		}
	}
}
