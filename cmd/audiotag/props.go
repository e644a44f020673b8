package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPropsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "props FILE",
		Short: "Print the audio stream properties of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.tagger.ReadAudioProperties(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "codec:       %s\n", p.Codec)
			fmt.Fprintf(out, "duration:    %s (%ds)\n", p.Duration, p.LengthSeconds())
			fmt.Fprintf(out, "bitrate:     %d kbps", p.BitrateKbps)
			if p.VBR {
				fmt.Fprint(out, " (VBR)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "sample rate: %d Hz\n", p.SampleRateHz)
			fmt.Fprintf(out, "channels:    %d\n", p.Channels)
			if p.BitDepth > 0 {
				fmt.Fprintf(out, "bit depth:   %d\n", p.BitDepth)
			}
			return nil
		},
	}
}
