package commands

import (
	"context"
	"fmt"
	"strings"

	"qnotes/pkg/api"
	"qnotes/pkg/utils"
	"qnotes/pkg/validation"
)

// HandleLogin processes --login and --register. The token is stored in the
// session so later commands and the TUI run authenticated.
func HandleLogin(ctx context.Context, env *Env, username, password string, register bool) error {
	username = strings.TrimSpace(username)
	check := validation.Login
	action := "logging in"
	if register {
		check = validation.Register
		action = "registering"
	}
	if err := check(username, password).Err(); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	creds := api.Credentials{Username: username, Password: password}
	var token string
	var err error
	if register {
		token, err = env.Notes.Register(ctx, creds)
	} else {
		token, err = env.Notes.Login(ctx, creds)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	if err := env.Session.SaveToken(token); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if err := env.Session.SaveUsername(username); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	utils.Log("Authenticated as %s", username)

	if register {
		env.printf("Registered and logged in as %s\n", username)
	} else {
		env.printf("Logged in as %s\n", username)
	}
	return nil
}

// HandleLogout processes --logout
func HandleLogout(env *Env) error {
	if err := env.Session.ClearToken(); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	env.printf("Logged out\n")
	return nil
}
