package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "samhal",
	Short: "Inspection tooling for the SAM hardware-abstraction module",
	Long: "samhal lists supported chip targets, validates clock-tree plans and\n" +
		"runs DMA scenarios against the hosted register model.",
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(simulateCmd)
}
