package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recordcast/config"
	"recordcast/record"
)

func newDiffCmd(opts *options) *cobra.Command {
	var fieldsOnly bool

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare two records of the same schema",
		Long: `Build both files as records of --type and print the differences.

By default a line diff of the YAML renderings is printed. With --fields
one line per changed field is printed instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.schema()
			if err != nil {
				return err
			}

			loader := config.NewLoader(config.WithLogger(opts.logger))

			a, err := loader.LoadFile(args[0], s)
			if err != nil {
				return err
			}

			b, err := loader.LoadFile(args[1], s)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if fieldsOnly {
				changes, err := record.Diff(a, b)
				if err != nil {
					return err
				}

				for _, c := range changes {
					fmt.Fprintln(out, c)
				}

				return nil
			}

			text, err := record.DiffText(a, b)
			if err != nil {
				return err
			}

			fmt.Fprint(out, text)

			return nil
		},
	}

	cmd.Flags().BoolVar(&fieldsOnly, "fields", false, "print changed fields instead of a line diff")

	return cmd
}
