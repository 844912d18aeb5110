package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"blogsupport/internal/models"
	"blogsupport/internal/repository"
)

func newRoleCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "role <name> <user|root>",
		Args:  cobra.ExactArgs(2),
		Short: "Set an account's role",
		Long:  `Grant or revoke moderation rights. Only root accounts may edit or delete comments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			role, err := parseRole(args[1])
			if err != nil {
				return err
			}

			return withStore(cmd, open, func(ctx context.Context, s Store) error {
				if err := s.UpdateRole(ctx, name, role); err != nil {
					if errors.Is(err, repository.ErrUserNotFound) {
						return fmt.Errorf("no account named %q", name)
					}
					return err
				}
				cmd.Printf("%s is now %s\n", name, role)
				return nil
			})
		},
	}
}

func parseRole(raw string) (models.UserRole, error) {
	switch role := models.UserRole(raw); role {
	case models.UserRoleUser, models.UserRoleRoot:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role %q, want %s or %s", raw, models.UserRoleUser, models.UserRoleRoot)
	}
}
