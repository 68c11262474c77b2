package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recordcast/config"
	"recordcast/record"
)

func newCastCmd(opts *options) *cobra.Command {
	var (
		input  string
		prefix string
		format string
	)

	cmd := &cobra.Command{
		Use:   "cast",
		Short: "Build a record from an input file and the environment",
		Long: `Build a record from an input file and environment variables and print it.

Environment variables override the input file. Variable names are the
prefix and the upper-cased field name joined by '_', e.g. APP_PORT.

Examples:
  recordcast cast --type Service --input service.yaml
  recordcast cast --type Service --env APP --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.schema()
			if err != nil {
				return err
			}

			loader := config.NewLoader(config.WithPrefix(prefix), config.WithLogger(opts.logger))

			if input != "" && !fileExists(input) {
				return fmt.Errorf("input file not found: %s", input)
			}

			inst, err := loader.Load(input, s)
			if err != nil {
				return err
			}

			return render(cmd, inst, format)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON or YAML input file")
	cmd.Flags().StringVar(&prefix, "env", config.DefaultPrefix, "environment variable prefix")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")

	return cmd
}

func render(cmd *cobra.Command, inst *record.Instance, format string) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case "yaml":
		data, err = inst.AsYAML()
	case "json":
		data, err = inst.AsJSON()
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)

	return err
}
