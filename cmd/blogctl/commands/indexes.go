package commands

import (
	"context"

	"github.com/spf13/cobra"
)

func newIndexesCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Args:  cobra.NoArgs,
		Short: "Create the collection indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, open, func(ctx context.Context, s Store) error {
				if err := s.EnsureIndexes(ctx); err != nil {
					return err
				}
				cmd.Println("indexes ensured")
				return nil
			})
		},
	}
}
