package cmd

import (
	"context"

	"gitlab.com/testpaper/papergen/db"
	"gitlab.com/testpaper/papergen/internal/config"
	"gitlab.com/testpaper/papergen/internal/logger"
)

// storeOpener connects to the subject store. Commands take one so tests can point them
// at a throwaway database.
type storeOpener func(ctx context.Context) (*db.Store, error)

var zlog *logger.Logger

func openConfiguredStore(ctx context.Context) (*db.Store, error) {
	return db.Connect(ctx, config.GetConfig())
}

// openUnmigratedStore connects without applying pending migrations.
func openUnmigratedStore(ctx context.Context) (*db.Store, error) {
	cfg := *config.GetConfig()
	cfg.Database.AutoMigrate = false
	return db.Connect(ctx, &cfg)
}

func init() {
	zlog = logger.New("cmd")

	// initialize top level commands
	rootCmd.AddCommand(NewServeCmd(openConfiguredStore))
	rootCmd.AddCommand(NewSubjectCmd(openConfiguredStore))
	rootCmd.AddCommand(NewMigrateCmd(openUnmigratedStore))
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(autocompleteCmd)
}
