package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version     = "0.3.0"
	BuildCommit = "unknown"
	BuildDate   = "unknown"

	jsonOutput  bool
	verbose     bool
	projectRoot string
)

var rootCmd = &cobra.Command{
	Use:   "rd",
	Short: "roomdir - searchable room directory for facility spreadsheets",
	Long: `roomdir turns facility room spreadsheets into a searchable directory.

Import room and occupant exports (CSV or XLSX), then search them with free
text such as "floor 2 exam" or "office MAIN". Rooms can carry custom tags,
which can be exported, imported and shared with collaborators.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Version may have been set by the linker.
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project", "p", "", "Project root directory (default: current directory)")
	cobra.OnInitialize(initProjectRoot)
}

func initProjectRoot() {
	if projectRoot == "" {
		var err error
		projectRoot, err = os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to get current directory: %v\n", err)
			os.Exit(1)
		}
	}
}

func GetProjectRoot() string {
	return projectRoot
}

func IsJSONOutput() bool {
	return jsonOutput
}

func IsVerbose() bool {
	return verbose
}
