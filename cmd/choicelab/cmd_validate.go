package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/choicelab/choicelab/internal/models"
	"github.com/choicelab/choicelab/internal/utility"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <model.yaml>",
		Short: "Validate a model specification file",
		Long: `Validate a YAML model file.

Checks the file against the model JSON Schema, then checks that every
utility expression only refers to declared parameters and to the dataset
attributes cost1, time1, cost2 and time2, and that parameter bounds and
starting values are consistent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading model file: %w", err)
			}

			w := cmd.OutOrStdout()
			if problems := utility.ValidateBytes(data); len(problems) > 0 {
				fmt.Fprintf(w, "✗ %s does not match the model schema:\n", path)
				for _, p := range problems {
					fmt.Fprintf(w, "  - %s\n", p)
				}
				return fmt.Errorf("%s: %d schema violation(s)", path, len(problems))
			}

			spec, err := utility.Parse(data)
			if err == nil {
				err = spec.Validate(models.AttributeNames)
			}
			var specErr *utility.SpecificationError
			if errors.As(err, &specErr) {
				fmt.Fprintf(w, "✗ %s: %s\n", path, specErr.Problem)
				return fmt.Errorf("%s: %w", path, err)
			}
			if err != nil {
				return err
			}

			free := spec.FreeParameters()
			names := make([]string, 0, len(free))
			for _, p := range free {
				names = append(names, p.Name)
			}
			fmt.Fprintf(w, "✓ %s is valid: model %q, %d alternatives, %d free parameters (%s)\n",
				path, spec.Name, len(spec.Alternatives()), len(free), strings.Join(names, ", "))
			return nil
		},
	}
}
