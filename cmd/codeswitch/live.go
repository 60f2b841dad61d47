package main

import (
	"github.com/spf13/cobra"

	"github.com/verte-zerg/codeswitch/internal/tui"
)

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "Classify text interactively as you type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadDetector(cmd)
			if err != nil {
				return err
			}
			return tui.Run(d, detectThreshold)
		},
	}
	addDetectorFlags(cmd)
	return cmd
}
