package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simonhull/audiotag"
)

func newFormatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported tag formats in matching order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PLUGIN\tFORMAT\tACCESS\tEXTENSIONS")
			for _, f := range a.tagger.Formats() {
				access := "read-write"
				if !f.Writable {
					access = "read-only"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, f.Format, access, strings.Join(f.Extensions, " "))
			}
			return w.Flush()
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "" {
				return audiotag.SaveConfig(output, a.cfg)
			}
			return audiotag.WriteConfig(cmd.OutOrStdout(), a.cfg)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to FILE instead of stdout")
	return cmd
}

func newVersionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), audiotag.Version)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), audiotag.ReadBuildInfo())
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
