package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newReadCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "read FILE...",
		Short: "Print the tags of one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.tagger.ReadTagsMany(cmd.Context(), args...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if asJSON {
				doc := make(map[string]map[string][]string, len(args))
				for i, path := range args {
					doc[path] = results[i].Map()
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}

			for i, path := range args {
				if len(args) > 1 {
					fmt.Fprintf(out, "%s:\n", path)
				}
				for key, values := range results[i].All() {
					for _, v := range values {
						fmt.Fprintf(out, "%s=%s\n", key, v)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
