package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// UserRegister creates a new user account.
func (r *Runner) UserRegister(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	user, err := services.identity.Register(ctx,
		cmd.String("email"),
		cmd.String("name"),
		cmd.String("password"),
	)
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return r.writePlain("✓ Registered %s (%s)\n", user.Email(), user.ID())
}

// UserLogin authenticates a user and prints a bearer token.
func (r *Runner) UserLogin(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	userID, token, err := services.identity.Authenticate(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{"user_id": userID, "token": token}, cmd.Bool("pretty"))
	}
	r.writePlain("User ID: %s\n", userID)
	return r.writePlain("Token: %s\n", token)
}
