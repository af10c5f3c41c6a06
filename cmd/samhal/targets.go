package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"omibyte.io/samhal/targets"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the supported chip families",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range targets.All() {
			variant := "per-channel blocks"
			if t.DMAC.SharedSelector {
				variant = "shared CHID selector"
			}
			fmt.Printf("%-8s %-14s dmac@0x%08x %2d channels (%s)\n",
				t.Series, t.Cpu, t.DMAC.Base, t.DMAC.Channels, variant)
			fmt.Printf("         chips: %s\n", strings.Join(t.Chips, ", "))
		}
	},
}
