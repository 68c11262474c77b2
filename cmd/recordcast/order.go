package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"recordcast/record"
)

func newOrderCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "order",
		Short: "Print the order in which fields are processed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.schema()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			for i, name := range s.Order() {
				f, _ := s.Field(name)
				fmt.Fprintf(out, "%d. %s %s%s\n", i+1, name, f.Type, describe(f))
			}

			return nil
		},
	}
}

func describe(f record.Field) string {
	var notes []string

	if len(f.DependsOn) > 0 {
		notes = append(notes, "after "+strings.Join(f.DependsOn, ", "))
	}

	if f.Has(record.FlagSkipCast) {
		notes = append(notes, "not cast")
	}

	if f.Has(record.FlagNullable) {
		notes = append(notes, "nullable")
	}

	if len(notes) == 0 {
		return ""
	}

	return " (" + strings.Join(notes, "; ") + ")"
}
