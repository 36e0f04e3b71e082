package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/matchline/tournops/internal/client/api"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account fields and creates the account. A
// successful register signs the user in; the guard then binds the push
// channel.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.auth.Register(ctx, api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}); err != nil {
		fmt.Println("Register failed:", a.auth.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.auth.Login(ctx, email, password); err != nil {
		fmt.Println("Login failed:", a.auth.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Logout signs out. The remote call is best effort; the local session is
// cleared either way.
func (a *App) Logout(ctx context.Context) error {
	return a.auth.Logout(ctx)
}

// Forgot runs the password recovery flow: request an OTP, verify it, set a
// new password.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.auth.ForgotPassword(ctx, email); err != nil {
		fmt.Println("Request failed:", a.auth.Error())
		return err
	}

	otp, err := getSimpleText(a.reader, "Enter the code you received", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.auth.VerifyOTP(ctx, email, otp); err != nil {
		fmt.Println("Code rejected:", a.auth.Error())
		return err
	}

	password, err := getPassword("Enter new password", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.auth.ResetPassword(ctx, email, otp, password); err != nil {
		fmt.Println("Reset failed:", a.auth.Error())
		return err
	}

	fmt.Println("Password updated, you can log in now.")
	return nil
}

// WhoAmI prints the signed-in user and their resolved role names.
func (a *App) WhoAmI(ctx context.Context) error {
	user := a.store.CurrentUser()
	if user == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("%s <%s>\n", user.Username, user.Email)
	if names := a.auth.RoleNames(ctx, user.RoleIDs); len(names) > 0 {
		fmt.Println("Roles:", strings.Join(names, ", "))
	}
	if user.IsEmailVerified {
		fmt.Println("Email verified.")
	} else {
		fmt.Println("Email not verified, run 'verify'.")
	}
	fmt.Println("Route:", a.currentRoute())
	return nil
}

// Passwd changes the password of the signed-in user.
func (a *App) Passwd(ctx context.Context) error {
	current, err := getPassword("Current password", os.Stdout)
	if err != nil {
		return err
	}
	next, err := getPassword("New password", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.ChangePassword(ctx, current, next); err != nil {
		fmt.Println("Change failed:", a.auth.Error())
		return err
	}

	fmt.Println("Password changed.")
	return nil
}

// Verify requests an email verification OTP and confirms it.
func (a *App) Verify(ctx context.Context) error {
	if err := a.auth.SendEmailVerification(ctx); err != nil {
		fmt.Println("Request failed:", a.auth.Error())
		return err
	}

	otp, err := getSimpleText(a.reader, "Enter the code sent to your email", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.auth.VerifyEmailOTP(ctx, otp); err != nil {
		fmt.Println("Code rejected:", a.auth.Error())
		return err
	}

	fmt.Println("Email verified.")
	return nil
}
