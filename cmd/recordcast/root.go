package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"recordcast/internal/schemafile"
	"recordcast/record"
)

// options holds the global flags.
type options struct {
	schemaPath string
	typeName   string
	logLevel   string
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "recordcast",
		Short: "Build typed records from files and environment variables",
		Long: `recordcast builds records declared in a YAML schema file.

Every field is coerced to its declared type, handlers run in dependency
order, and nested records are built recursively.

Commands:
  recordcast cast   # Build a record and print it
  recordcast order  # Print the field processing order
  recordcast diff   # Compare two records of the same schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", opts.logLevel, err)
			}

			opts.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
				Level(level).
				With().
				Timestamp().
				Logger()

			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.schemaPath, "schema", "s", "schemas.yaml", "schema file path")
	root.PersistentFlags().StringVarP(&opts.typeName, "type", "t", "", "schema name to build")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newCastCmd(opts), newOrderCmd(opts), newDiffCmd(opts), newImportCmd(opts), newVersionCmd())

	return root
}

// schema loads the schema file and returns the schema selected by --type.
func (o *options) schema() (*record.Schema, error) {
	f, err := schemafile.LoadFile(o.schemaPath)
	if err != nil {
		return nil, err
	}

	reg, err := schemafile.Build(f, nil)
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", o.schemaPath, err)
	}

	if o.typeName == "" {
		return nil, fmt.Errorf("--type is required, one of %v", reg.Names())
	}

	s, ok := reg.Lookup(o.typeName)
	if !ok {
		return nil, fmt.Errorf("unknown type %q, one of %v", o.typeName, reg.Names())
	}

	for _, w := range s.Warnings() {
		o.logger.Warn().Str("schema", s.Name()).Msg(w)
	}

	o.logger.Debug().Str("schema", s.Name()).Strs("order", s.Order()).Msg("schema loaded")

	return s, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
