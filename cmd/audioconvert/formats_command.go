package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"audio-convert/internal/formats"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported output formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(formats.All()))
			for _, info := range formats.All() {
				kind := "lossless"
				if info.Lossy {
					kind = "lossy"
				}
				bitrate := info.DefaultBitrate
				if bitrate == "" {
					bitrate = "-"
				}
				rows = append(rows, []string{
					info.ID,
					info.Name,
					info.Extension,
					kind,
					bitrate,
					strings.TrimSpace(info.Description),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Ext", "Kind", "Default bitrate", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
