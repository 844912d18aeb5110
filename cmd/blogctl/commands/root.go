package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"blogsupport/internal/config"
	"blogsupport/internal/database"
	"blogsupport/internal/models"
	"blogsupport/internal/repository"
)

// Store is what the operator commands need from the document store.
type Store interface {
	UpdateRole(ctx context.Context, name string, role models.UserRole) error
	EnsureIndexes(ctx context.Context) error
	Close(ctx context.Context) error
}

// Opener connects to the store described by the API configuration.
type Opener func(ctx context.Context) (Store, error)

// NewRootCmd creates the root command
func NewRootCmd(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "blogctl",
		Short:         "Operator commands for the blog backend",
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(
		newRoleCommand(open),
		newIndexesCommand(open),
	)

	return rootCmd
}

type mongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	users  *repository.UserRepository
}

func (s *mongoStore) UpdateRole(ctx context.Context, name string, role models.UserRole) error {
	return s.users.UpdateRole(ctx, name, role)
}

func (s *mongoStore) EnsureIndexes(ctx context.Context) error {
	return database.EnsureIndexes(ctx, s.db)
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// MongoOpener loads the API configuration and connects to its database.
func MongoOpener(ctx context.Context) (Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	client, err := database.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	db := client.Database(cfg.Mongo.Database)
	return &mongoStore{client: client, db: db, users: repository.NewUserRepository(db)}, nil
}

func withStore(cmd *cobra.Command, open Opener, fn func(ctx context.Context, s Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	return fn(ctx, store)
}
