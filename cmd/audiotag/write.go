package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/audiotag"
)

func newWriteCommand(a *app) *cobra.Command {
	var (
		backup   string
		preserve bool
		validate bool
	)
	cmd := &cobra.Command{
		Use:   "write FILE KEY=VALUE...",
		Short: "Set tags on a file",
		Long: `Set tags on a file.

Repeating a key stores several values. KEY= with nothing after the equals
sign removes the key. Keys that are not given are left unchanged.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}

			var opts []audiotag.SaveOption
			if backup != "" {
				opts = append(opts, audiotag.WithBackup(backup))
			}
			if preserve {
				opts = append(opts, audiotag.WithPreserveModTime())
			}
			if validate {
				opts = append(opts, audiotag.WithValidation())
			}

			if _, err := a.tagger.WriteTags(cmd.Context(), args[0], tags, opts...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d keys to %s\n", len(tags), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&backup, "backup", "", "keep the previous file with this suffix")
	cmd.Flags().BoolVar(&preserve, "preserve-mtime", false, "keep the file modification time")
	cmd.Flags().BoolVar(&validate, "validate", false, "re-read the file after writing")
	return cmd
}

// parseAssignments turns KEY=VALUE arguments into a tag map.
func parseAssignments(args []string) (map[string][]string, error) {
	tags := make(map[string][]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, want KEY=VALUE", arg)
		}
		key = strings.ToUpper(key)
		if value == "" {
			if _, seen := tags[key]; !seen {
				tags[key] = []string{}
			}
			continue
		}
		tags[key] = append(tags[key], value)
	}
	return tags, nil
}
