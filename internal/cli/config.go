package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roomdir-dev/roomdir/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify configuration",
	Long: `View or modify the project configuration in .roomdir/config.yaml.

Without a subcommand, displays the full configuration.
Keys use dot notation (e.g., daemon.port, search.results_per_page).`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting or a whole section",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting and save it to .roomdir/config.yaml.

Examples:
  rd config set daemon.port 7600
  rd config set collab.enabled true
  rd config set collab.url https://sync.example.org`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd, configSetCmd)
}

// loadProjectConfig reads the project config with defaults filled in.
func loadProjectConfig() (*config.Loader, *config.Config, error) {
	loader := config.NewLoader(GetProjectRoot())
	if !loader.Exists() {
		return nil, nil, ErrNotInitialized()
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, ErrConfigInvalid(err)
	}
	return loader, config.MergeConfigs(nil, cfg), nil
}

// configTree renders cfg as nested maps keyed like the YAML file.
func configTree(cfg *config.Config) (map[string]interface{}, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	tree := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return tree, nil
}

// lookupKey walks a dotted key through the config tree.
func lookupKey(tree map[string]interface{}, key string) (interface{}, bool) {
	var node interface{} = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, false
		}
		node, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

func unknownKey(tree map[string]interface{}, key string) *CLIError {
	sections := make([]string, 0, len(tree))
	for k := range tree {
		sections = append(sections, k)
	}
	sort.Strings(sections)
	return NewCLIError(fmt.Sprintf("Unknown config key: %s", key),
		fmt.Sprintf("Top-level sections are: %s", strings.Join(sections, ", ")))
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	if IsJSONOutput() {
		return outputFor(cmd).JSON(cfg)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	_, cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	tree, err := configTree(cfg)
	if err != nil {
		return err
	}
	value, ok := lookupKey(tree, key)
	if !ok {
		return unknownKey(tree, key)
	}

	if IsJSONOutput() {
		return outputFor(cmd).JSON(map[string]interface{}{"key": key, "value": value})
	}
	if section, ok := value.(map[string]interface{}); ok {
		data, err := yaml.Marshal(section)
		if err != nil {
			return fmt.Errorf("failed to marshal value to YAML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	loader, cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	tree, err := configTree(cfg)
	if err != nil {
		return err
	}
	if strings.HasPrefix(key, "abbreviations") {
		return NewCLIError("Abbreviations are not set through config", "Use 'rd abbrev set <abbr> <label>'")
	}
	current, ok := lookupKey(tree, key)
	if !ok {
		return unknownKey(tree, key)
	}

	var value interface{}
	switch current.(type) {
	case map[string]interface{}:
		return NewCLIError(fmt.Sprintf("%s is a section", key), fmt.Sprintf("Set one of its keys, see 'rd config get %s'", key))
	case int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return NewCLIError(fmt.Sprintf("Invalid integer value for %s: %s", key, raw), "Use a whole number")
		}
		value = n
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return NewCLIError(fmt.Sprintf("Invalid boolean value for %s: %s", key, raw), "Use true or false")
		}
		value = b
	default:
		value = raw
	}

	merged, err := loader.Merge(map[string]interface{}{key: value})
	if err != nil {
		return ErrConfigInvalid(err)
	}
	merged = config.MergeConfigs(nil, merged)
	if errs := config.Validate(merged); errs.HasErrors() {
		return WrapError(errs, fmt.Sprintf("Cannot set %s to %s", key, raw), "Check the value and try again")
	}
	if err := loader.Save(merged); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	out := outputFor(cmd)
	if IsJSONOutput() {
		return out.JSON(map[string]interface{}{"key": key, "value": value})
	}
	out.Success("Set %s = %s", key, raw)
	if strings.HasPrefix(key, "daemon.") || strings.HasPrefix(key, "collab.") || strings.HasPrefix(key, "data.") {
		out.Info("Restart the daemon for the change to take effect")
	}
	return nil
}
