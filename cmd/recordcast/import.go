package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recordcast/internal/analyze"
	"recordcast/internal/schemafile"
)

func newImportCmd(opts *options) *cobra.Command {
	var (
		structs []string
		output  string
		dir     string
	)

	cmd := &cobra.Command{
		Use:   "import PACKAGE...",
		Short: "Declare schemas for Go struct types",
		Long: `Load Go packages and write a schema file declaring their struct types.

Every struct reachable from the selected ones gets a schema of its own.
Without --struct every exported struct of the packages is declared.

Examples:
  recordcast import ./internal/config --struct Settings -o schemas.yaml
  recordcast import example.com/app/model`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer := analyze.NewAnalyzer(dir)

			graph, err := analyzer.LoadPackages(args...)
			if err != nil {
				return err
			}

			var roots []*analyze.TypeInfo

			if len(structs) == 0 {
				for _, id := range graph.Structs() {
					roots = append(roots, graph.GetType(id))
				}
			}

			for _, name := range structs {
				ids := graph.Find(name)

				switch len(ids) {
				case 0:
					return fmt.Errorf("struct %q not found in %v", name, args)
				case 1:
				default:
					return fmt.Errorf("struct %q is ambiguous: %v", name, ids)
				}

				info, err := analyzer.GetStruct(ids[0])
				if err != nil {
					return err
				}

				roots = append(roots, info)
			}

			if len(roots) == 0 {
				return errors.New("no struct types found")
			}

			exp := analyze.NewExporter()

			f, err := exp.Export(roots...)
			if err != nil {
				return err
			}

			for _, w := range exp.Warnings() {
				opts.logger.Warn().Msg(w)
			}

			data, err := schemafile.Marshal(f)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			opts.logger.Info().Str("path", output).Int("schemas", len(f.Schemas)).Msg("schema file written")

			return os.WriteFile(output, data, 0o644)
		},
	}

	cmd.Flags().StringSliceVar(&structs, "struct", nil, "struct type to declare (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the schema file here instead of stdout")
	cmd.Flags().StringVar(&dir, "dir", "", "directory relative package patterns are resolved in")

	return cmd
}
