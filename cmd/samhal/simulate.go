package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"omibyte.io/samhal/chip"
	"omibyte.io/samhal/clock"
	"omibyte.io/samhal/dmac"
	"omibyte.io/samhal/sim"
	"omibyte.io/samhal/targets"
)

var (
	simSeries string
	simCalib  string
	simTrace  bool
)

func init() {
	simulateCmd.Flags().StringVar(&simSeries, "series", "samx51", "chip series to model")
	simulateCmd.Flags().StringVar(&simCalib, "calib", "", "Intel HEX image of the NVM calibration row")
	simulateCmd.Flags().BoolVar(&simTrace, "trace", false, "dump the full register trace")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a software-triggered DMA transfer against the register model",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := targets.All().FindBySeries(simSeries)
		if err != nil {
			return err
		}

		bus := sim.New()
		model := sim.NewDMAC(bus, target.DMAC.Base, target.DMAC.Channels, target.DMAC.SharedSelector)

		if simCalib != "" {
			f, err := os.Open(simCalib)
			if err != nil {
				return err
			}
			err = bus.LoadHex(f)
			f.Close()
			if err != nil {
				return err
			}
			fmt.Printf("DFLL48M factory coarse: %d\n", chip.Dfll48Coarse(bus))
		}

		if target.Osc.Base != 0 {
			sim.NewDFLL(bus, target.Osc.Base)
			token := clock.NewDfllToken(bus, target.Osc.Base)
			if simCalib != "" {
				token.Calibrate()
			}
			enabled := clock.OpenLoopDfll(token).Enable()
			fmt.Printf("DFLL48M open loop: %d Hz\n", enabled.Freq())
		}

		ctrl, err := dmac.FromTarget(target, bus, bus)
		if err != nil {
			return err
		}
		ctrl.Init(0x20000000, 0x20000400)
		channels := ctrl.Channels()

		busy := channels[0].Init(dmac.Lvl0).Start(dmac.SourceDisable, dmac.ActionBlock)
		busy.Free()

		fmt.Printf("channel 0 transfer complete, CHINTFLAG=0x%02x\n", model.IntFlag(0))
		fmt.Printf("%d register accesses\n", len(bus.Trace()))
		if simTrace {
			for _, a := range bus.Trace() {
				dir := "rd"
				if a.Write {
					dir = "wr"
				}
				masked := " "
				if a.Masked {
					masked = "*"
				}
				fmt.Printf("%s%s %2d 0x%08x = 0x%08x\n", masked, dir, a.Width, a.Addr, a.Value)
			}
		}
		return nil
	},
}
