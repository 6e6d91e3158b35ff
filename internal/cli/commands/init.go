package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/gosass/internal/cli/config"
	"github.com/conduit-lang/gosass/internal/cli/ui"
	"github.com/conduit-lang/gosass/internal/compiler/output"
)

const starterStylesheet = `$primary: #336699;

body {
  color: $primary;
}
`

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a gosass.yml configuration",
		Long: `Create a gosass.yml in dir (default: the current directory).

The command asks for the output style, the input and output directories,
whether to minify and an optional Redis URL for a shared cache. With --yes
the defaults are written without prompting. A starter stylesheet is created
when the input directory does not exist yet.`,
		Example: `  # Answer the prompts
  gosass init

  # Accept every default
  gosass init --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if config.Exists(dir) && !force {
				return fmt.Errorf("%s already has a gosass configuration (use --force to overwrite)", dir)
			}

			cfg, err := config.Defaults()
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), noColor))
				return errReported
			}
			if !yes {
				if err := askConfig(cfg); err != nil {
					return err
				}
			}

			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			path := filepath.Join(dir, config.FileNames[0])
			if err := config.Write(path, cfg); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			ui.WriteSuccess(cmd.OutOrStdout(), "Created "+path, noColor)

			inputDir := filepath.Join(dir, cfg.InputDir)
			if _, err := os.Stat(inputDir); os.IsNotExist(err) {
				starter := filepath.Join(inputDir, "main.scss")
				if err := writeOutput(starter, starterStylesheet); err != nil {
					return err
				}
				ui.WriteSuccess(cmd.OutOrStdout(), "Created "+starter, noColor)
			}

			fmt.Fprint(cmd.OutOrStdout(), ui.Info("Next: gosass watch --serve", noColor))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Write the defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")

	return cmd
}

func askConfig(cfg *config.Config) error {
	questions := []*survey.Question{
		{
			Name: "style",
			Prompt: &survey.Select{
				Message: "Output style:",
				Options: output.StyleNames(),
				Default: cfg.Style,
			},
		},
		{
			Name:     "input",
			Prompt:   &survey.Input{Message: "Stylesheet directory:", Default: cfg.InputDir},
			Validate: survey.Required,
		},
		{
			Name:     "output",
			Prompt:   &survey.Input{Message: "CSS output directory:", Default: cfg.OutputDir},
			Validate: survey.Required,
		},
		{
			Name:   "minify",
			Prompt: &survey.Confirm{Message: "Minify the generated CSS?", Default: cfg.Minify},
		},
		{
			Name:     "redis",
			Prompt:   &survey.Input{Message: "Redis URL for a shared cache (empty for none):"},
			Validate: validateRedisURL,
		},
	}

	answers := struct {
		Style  string
		Input  string
		Output string
		Minify bool
		Redis  string
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	cfg.Style = answers.Style
	cfg.InputDir = answers.Input
	cfg.OutputDir = answers.Output
	cfg.Minify = answers.Minify
	cfg.Cache.RedisURL = strings.TrimSpace(answers.Redis)
	return nil
}

func validateRedisURL(ans interface{}) error {
	s, _ := ans.(string)
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "redis://") || strings.HasPrefix(s, "rediss://") {
		return nil
	}
	return fmt.Errorf("must start with redis:// or rediss://")
}
