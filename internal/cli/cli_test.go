package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/db"
)

const testRoomsCSV = `rmrecnbr,rmnbr,floor,bld_descrshort,rmtyp_descrshort,rmsubtyp_descrshort,dept_descr
9001,101,1,MAIN,OFF,PRIV,Family Medicine
9002,204,2,MAIN,EXAM,,Family Medicine
9003,310,3,TOWER,LAB,XYZ,Research
`

const testStaffCSV = `rmrecnbr,person_name
9002,Jane Doe
`

// =============================================================================
// Test Helpers
// =============================================================================

// resetFlags restores every flag of the command tree to its default so each
// test starts from a clean command line.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runCLI executes rd against root and returns what it printed.
func runCLI(t *testing.T, root string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--project", root}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// newProject initializes an empty project with an isolated global config.
func newProject(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	_, _, err := runCLI(t, root, "init")
	require.NoError(t, err)
	return root
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// importedProject is a project holding three rooms and one staff member.
func importedProject(t *testing.T) string {
	t.Helper()
	root := newProject(t)
	src := t.TempDir()
	rooms := writeFile(t, src, "rooms.csv", testRoomsCSV)
	staff := writeFile(t, src, "staff.csv", testStaffCSV)
	_, _, err := runCLI(t, root, "import", rooms, staff)
	require.NoError(t, err)
	return root
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func requireCLIError(t *testing.T, err error, contains string) *CLIError {
	t.Helper()
	require.Error(t, err)
	var cliErr *CLIError
	require.True(t, errors.As(err, &cliErr), "expected *CLIError, got %T: %v", err, err)
	assert.Contains(t, cliErr.Message, contains)
	assert.NotEmpty(t, cliErr.Suggestion)
	return cliErr
}

// =============================================================================
// Root Command Tests
// =============================================================================

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "rd", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "roomdir")
}

func TestRootCommandFlags(t *testing.T) {
	jsonFlag := rootCmd.PersistentFlags().Lookup("json")
	require.NotNil(t, jsonFlag)
	assert.Equal(t, "false", jsonFlag.DefValue)

	verboseFlag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	projectFlag := rootCmd.PersistentFlags().Lookup("project")
	require.NotNil(t, projectFlag)
	assert.Equal(t, "p", projectFlag.Shorthand)
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"init", "import", "search", "suggest", "tag", "staff", "tags", "session",
		"abbrev", "status", "shell", "config", "sync", "start", "stop", "version",
	} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

// =============================================================================
// Error Tests
// =============================================================================

func TestCLIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
		want string
	}{
		{"message only", NewCLIError("boom", ""), "boom"},
		{"with suggestion", NewCLIError("boom", "try again"), "boom\n\nSuggestion: try again"},
		{"with cause", WrapError(errors.New("disk full"), "boom", "free space"), "boom: disk full\n\nSuggestion: free space"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestCLIError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapError(cause, "wrapped", "")
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, NewCLIError("plain", "").Unwrap())
}

func TestPredefinedErrors_HaveSuggestions(t *testing.T) {
	errs := []*CLIError{
		ErrNotInitialized(),
		ErrDaemonNotRunning(),
		ErrDaemonAlreadyRunning(42),
		ErrDaemonStartFailed(errors.New("x")),
		ErrDaemonHealthTimeout("daemon.log"),
		ErrDaemonConnectionFailed(errors.New("x")),
		ErrConfigInvalid(errors.New("x")),
		ErrInvalidProjectRoot("/nope"),
		ErrEmptyQuery(),
		ErrRoomNotFound("999"),
		ErrEmptyDirectory(),
		ErrCollabDisabled(),
	}
	for _, e := range errs {
		assert.NotEmpty(t, e.Message)
		assert.NotEmpty(t, e.Suggestion, e.Message)
	}
	assert.Contains(t, ErrDaemonAlreadyRunning(42).Message, "42")
}

// =============================================================================
// Output Tests
// =============================================================================

func TestOutputFormatter_Streams(t *testing.T) {
	var out, errOut bytes.Buffer
	f := NewOutputFormatterWithWriters(&out, &errOut)

	f.Success("saved %d", 3)
	f.Info("plain")
	f.Warn("careful")
	f.Error("failed")

	assert.Equal(t, "[OK] saved 3\nplain\n", out.String())
	assert.Equal(t, "[WARN] careful\n[ERROR] failed\n", errOut.String())
}

func TestOutputFormatter_JSON(t *testing.T) {
	var out bytes.Buffer
	f := NewOutputFormatterWithWriters(&out, &out)
	require.NoError(t, f.JSON(map[string]int{"rooms": 3}))
	assert.Equal(t, "{\n  \"rooms\": 3\n}\n", out.String())
}

func TestOutputFormatter_Table(t *testing.T) {
	var out bytes.Buffer
	f := NewOutputFormatterWithWriters(&out, &out)
	f.Table([]string{"ABBR", "ROOMS"}, [][]string{{"XYZ", "12"}})

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "ABBR")
	assert.Contains(t, string(lines[1]), "----")
	assert.Contains(t, string(lines[2]), "XYZ")
}

// =============================================================================
// Version Tests
// =============================================================================

func TestVersionCommand_JSON(t *testing.T) {
	stdout, _, err := runCLI(t, t.TempDir(), "version", "--json")
	require.NoError(t, err)

	info := decodeJSON[VersionInfo](t, stdout)
	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.OS)
}

func TestVersionCommand_Text(t *testing.T) {
	stdout, _, err := runCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "roomdir "+Version)
	assert.Contains(t, stdout, "OS/Arch:")
}

// =============================================================================
// Init Tests
// =============================================================================

func TestInit_CreatesProject(t *testing.T) {
	root := newProject(t)

	assert.FileExists(t, filepath.Join(root, config.ProjectDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(root, config.ProjectDir, db.DatabaseFile))
	assert.DirExists(t, filepath.Join(root, "data"))
}

func TestInit_AlreadyInitialized(t *testing.T) {
	root := newProject(t)

	_, stderr, err := runCLI(t, root, "init")
	require.NoError(t, err)
	assert.Contains(t, stderr, "already initialized")
}

func TestInit_JSON(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()

	stdout, _, err := runCLI(t, root, "init", "--json")
	require.NoError(t, err)

	result := decodeJSON[InitResult](t, stdout)
	assert.True(t, result.Success)
	assert.Equal(t, root, result.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "data"), result.DataDir)
}

func TestInit_InvalidRoot(t *testing.T) {
	_, _, err := runCLI(t, filepath.Join(t.TempDir(), "missing"), "init")
	requireCLIError(t, err, "Invalid project root")
}

func TestCommands_RequireInit(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()

	for _, args := range [][]string{
		{"search", "exam"},
		{"status"},
		{"tag", "list", "204"},
		{"config", "get", "daemon.port"},
		{"stop"},
	} {
		_, _, err := runCLI(t, root, args...)
		requireCLIError(t, err, "not been initialized")
	}
}

// =============================================================================
// Config Tests
// =============================================================================

func TestConfig_GetValue(t *testing.T) {
	root := newProject(t)

	stdout, _, err := runCLI(t, root, "config", "get", "daemon.port")
	require.NoError(t, err)
	assert.Equal(t, "7457\n", stdout)

	stdout, _, err = runCLI(t, root, "config", "get", "search")
	require.NoError(t, err)
	assert.Contains(t, stdout, "results_per_page: 10")
}

func TestConfig_ShowFull(t *testing.T) {
	root := newProject(t)

	stdout, _, err := runCLI(t, root, "config", "--json")
	require.NoError(t, err)
	cfg := decodeJSON[config.Config](t, stdout)
	assert.Equal(t, 7457, cfg.Daemon.Port)
	assert.Equal(t, "data", cfg.Data.Dir)
}

func TestConfig_SetValue(t *testing.T) {
	root := newProject(t)

	_, _, err := runCLI(t, root, "config", "set", "daemon.port", "7600")
	require.NoError(t, err)
	_, _, err = runCLI(t, root, "config", "set", "data.watch", "false")
	require.NoError(t, err)
	_, _, err = runCLI(t, root, "config", "set", "daemon.log_level", "debug")
	require.NoError(t, err)

	cfg, err := LoadMergedConfig(root)
	require.NoError(t, err)
	assert.Equal(t, 7600, cfg.Daemon.Port)
	assert.False(t, cfg.Data.Watch)
	assert.Equal(t, "debug", cfg.Daemon.LogLevel)
	assert.Equal(t, 10, cfg.Search.ResultsPerPage)
}

func TestConfig_SetRejectsBadInput(t *testing.T) {
	root := newProject(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown key", []string{"daemon.nope", "1"}, "Unknown config key"},
		{"not an integer", []string{"daemon.port", "high"}, "Invalid integer"},
		{"not a boolean", []string{"data.watch", "maybe"}, "Invalid boolean"},
		{"section", []string{"daemon", "x"}, "is a section"},
		{"fails validation", []string{"daemon.log_level", "shout"}, "Cannot set daemon.log_level"},
		{"abbreviations", []string{"abbreviations.XYZ", "Lab"}, "Abbreviations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, root, append([]string{"config", "set"}, tt.args...)...)
			requireCLIError(t, err, tt.want)
		})
	}

	cfg, err := LoadMergedConfig(root)
	require.NoError(t, err)
	assert.Equal(t, 7457, cfg.Daemon.Port)
}

func TestLoadMergedConfig_InvalidProjectConfig(t *testing.T) {
	root := newProject(t)
	path := filepath.Join(root, config.ProjectDir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("daemon:\n  log_level: shout\n"), 0644))

	_, err := LoadMergedConfig(root)
	requireCLIError(t, err, "Configuration file is invalid")
}
