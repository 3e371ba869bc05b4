package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"gitlab.com/testpaper/papergen/db"
	"gitlab.com/testpaper/papergen/internal/config"
)

// testConfig returns a config keeping every database file under a temporary dir.
func testConfig(t *testing.T, driver string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		General: config.General{DataDir: dir},
		Rest:    config.Rest{AllowedOrigins: []string{"*"}},
		Database: config.Database{
			Driver:      driver,
			DSN:         filepath.Join(dir, "test.db"),
			AutoMigrate: true,
		},
		Tracing: config.Tracing{ServiceName: "papergen-test"},
	}
}

func opener(cfg *config.Config) storeOpener {
	return func(ctx context.Context) (*db.Store, error) {
		return db.Connect(ctx, cfg)
	}
}

// run executes cmd with args and returns everything it printed.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	buf := new(bytes.Buffer)
	versionCmd.SetOut(buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "papergen version: "+Version+"\n", buf.String())
}

func TestRootHasCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "subject", "migrate", "version"})
}

func TestServeStopsWithContext(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	cfg.Rest.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, serve(ctx, opener(cfg), cfg))
}
