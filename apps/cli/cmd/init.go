package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitmatch/packages/core/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new hitmatch project",
	Long: `Initialize a new hitmatch project in the current (or given) directory.

This creates:
  - .hitmatch.config.json   - Configuration file
  - example.hitmatch.yaml   - Example suite
  - user.json               - JSON document read by the example suite

Examples:
  hitmatch init
  hitmatch init ./checks --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

type exampleSuite struct {
	Variables map[string]any `yaml:"variables"`
	Cases     []exampleCase  `yaml:"cases"`
}

type exampleCase struct {
	Name    string   `yaml:"name"`
	Tags    []string `yaml:"tags,omitempty"`
	Assert  string   `yaml:"assert"`
	Not     bool     `yaml:"not,omitempty"`
	Subject any      `yaml:"subject"`
	Args    []any    `yaml:"args,omitempty"`
}

func exampleCases() exampleSuite {
	return exampleSuite{
		Variables: map[string]any{"name": "Ann", "minAge": 18},
		Cases: []exampleCase{
			{
				Name:    "user name",
				Tags:    []string{"smoke"},
				Assert:  "haveJsonKeyWithValue",
				Subject: `{"user": {"name": "Ann", "age": 30}}`,
				Args:    []any{"user.name", "{{name}}"},
			},
			{
				Name:    "age read from file",
				Assert:  "rangeBetween",
				Subject: map[string]string{"file": "user.json", "path": "user.age"},
				Args:    []any{"{{minAge}}", 120},
			},
			{
				Name:    "no password in payload",
				Assert:  "haveJsonKey",
				Not:     true,
				Subject: map[string]string{"file": "user.json"},
				Args:    []any{"user.password"},
			},
			{
				Name:    "payload is json",
				Tags:    []string{"smoke"},
				Assert:  "beValidJson",
				Subject: map[string]string{"file": "user.json"},
			},
		},
	}
}

func initCommand(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	configFile := filepath.Join(dir, config.ConfigFilenames[0])
	exampleFile := filepath.Join(dir, "example.hitmatch.yaml")
	dataFile := filepath.Join(dir, "user.json")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile, dataFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.OutputDir = "reports"
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	suiteYAML, err := yaml.Marshal(exampleCases())
	if err != nil {
		return fmt.Errorf("failed to render example suite: %w", err)
	}
	if err := os.WriteFile(exampleFile, suiteYAML, 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	data := `{
  "user": {
    "name": "Ann",
    "age": 30,
    "roles": ["admin", "editor"]
  }
}
`
	if err := os.WriteFile(dataFile, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to create data file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", dataFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhitmatch project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'hitmatch run %s' to evaluate the example cases.\n", exampleFile)

	return nil
}
