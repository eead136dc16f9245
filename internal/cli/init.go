package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize roomdir in the current project",
	Long: `Initialize roomdir by creating a .roomdir directory with configuration
and database files.

The init command will:
  - Create the .roomdir directory
  - Generate a default config.yaml file
  - Initialize the SQLite database with the required schema
  - Create the data directory the daemon watches for spreadsheets`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.Context(), GetProjectRoot(), cmd.OutOrStdout(), cmd.ErrOrStderr(), IsJSONOutput())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// InitResult represents the result of an init operation for JSON output
type InitResult struct {
	Success      bool   `json:"success"`
	ProjectRoot  string `json:"project_root"`
	ConfigPath   string `json:"config_path"`
	DatabasePath string `json:"database_path,omitempty"`
	DataDir      string `json:"data_dir,omitempty"`
	Message      string `json:"message,omitempty"`
}

// runInit sets up projectRoot. Running it twice leaves the existing setup
// untouched.
func runInit(ctx context.Context, projectRoot string, stdout, stderr io.Writer, jsonOutput bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := NewOutputFormatterWithWriters(stdout, stderr)

	info, err := os.Stat(projectRoot)
	if err != nil || !info.IsDir() {
		return ErrInvalidProjectRoot(projectRoot)
	}

	loader := config.NewLoader(projectRoot)
	result := InitResult{ProjectRoot: projectRoot, ConfigPath: loader.ConfigPath()}

	if loader.Exists() {
		result.Message = fmt.Sprintf("roomdir already initialized at %s", loader.ProjectDirPath())
		if jsonOutput {
			return out.JSON(result)
		}
		out.Warn("%s", result.Message)
		return nil
	}

	cfg, err := loader.Init()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	database, err := db.Open(projectRoot)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	dataDir := config.DataDir(projectRoot, cfg)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	result.Success = true
	result.DatabasePath = database.Path()
	result.DataDir = dataDir
	result.Message = "Initialized roomdir successfully"

	if jsonOutput {
		return out.JSON(result)
	}
	out.Success("Initialized roomdir in %s", loader.ProjectDirPath())
	out.Info("Drop room and occupant spreadsheets into %s, or run 'rd import <files>'", dataDir)
	return nil
}
