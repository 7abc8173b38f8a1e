package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/choicelab/choicelab/internal/projectconfig"
	"github.com/choicelab/choicelab/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var (
		yes   bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a .choicelab.yaml project config",
		Long: `Create a .choicelab.yaml file in the given directory (default: current).

Runs an interactive form for the main settings. With --yes the defaults are
written without prompting. Use --force to replace an existing file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}

			target := filepath.Join(dir, projectconfig.FileName)
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", target)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", target, err)
			}

			cfg := projectconfig.New()
			if !yes {
				var err error
				cfg, err = wizard.RunInitWizard(cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
				if err != nil {
					return err
				}
			}

			path, err := projectconfig.Save(dir, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized project config:")
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
			fmt.Fprintln(cmd.OutOrStdout(), "  1. Run: choicelab generate")
			fmt.Fprintln(cmd.OutOrStdout(), "  2. Run: choicelab estimate --model with-asc --model without-asc")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Write defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .choicelab.yaml")
	return cmd
}
