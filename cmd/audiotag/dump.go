package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Useful to confirm what we're able to actually read from a tag block.
func newDumpCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "List the raw frames or blocks of a file's tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plugin, elems, err := a.tagger.Dump(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", args[0], plugin)
			for _, e := range elems {
				fmt.Fprintf(out, "  %-14s (size: %d, offset: %d)", e.ID, e.Size, e.Offset)
				if e.Detail != "" {
					fmt.Fprintf(out, "  %s", e.Detail)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
