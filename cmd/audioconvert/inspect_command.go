package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"audio-convert/internal/probe"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <files...>",
		Short: "Show metadata for audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(args))
			for _, info := range probe.InspectAll(args) {
				format := info.Format
				if format == "" {
					format = "?"
				}
				rate := "-"
				if info.SampleRate > 0 {
					rate = strconv.Itoa(info.SampleRate) + " Hz"
				}
				channels := "-"
				if info.Channels > 0 {
					channels = strconv.Itoa(info.Channels)
				}
				duration := "-"
				if info.Seconds > 0 {
					duration = (time.Duration(info.Seconds * float64(time.Second))).Round(time.Second).String()
				}
				size := info.SizeLabel
				if size == "" {
					size = "missing"
				}
				rows = append(rows, []string{info.Name, format, size, rate, channels, duration})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Format", "Size", "Sample rate", "Channels", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}
