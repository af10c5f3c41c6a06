package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"omibyte.io/samhal/clockplan"
)

var planCmd = &cobra.Command{
	Use:   "plan <file.yaml>",
	Short: "Validate a clock-tree plan and print resolved frequencies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		plan, err := clockplan.Load(f)
		if err != nil {
			return err
		}
		order, freqs, err := plan.Resolve()
		if err != nil {
			return err
		}
		for _, name := range order {
			fmt.Printf("%-16s %12d Hz\n", name, freqs[name])
		}
		return nil
	},
}
