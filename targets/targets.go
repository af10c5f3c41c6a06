// Package targets carries the supported chip-family table. Selecting a
// target decides register bases, channel counts and which register-access
// strategy the DMAC driver uses; it is a configuration axis, never a runtime
// branch inside the drivers.
package targets

import (
	_ "embed"
	"errors"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed targets.yaml
var rawTargets []byte

var targets Targets

var ErrTargetNotFound = errors.New("target not found")

func All() Targets {
	return targets
}

type Targets []TargetInfo

type TargetInfo struct {
	Series string      `yaml:"series"`
	Chips  []string    `yaml:"chips"`
	Cpu    string      `yaml:"cpu"`
	DMAC   DmacInfo    `yaml:"dmac"`
	Osc    OscctrlInfo `yaml:"oscctrl"`
}

// DmacInfo describes the family's DMA controller block.
type DmacInfo struct {
	Base     uint32 `yaml:"base"`
	Channels int    `yaml:"channels"`
	// SharedSelector marks the generation whose channel registers are
	// multiplexed through CHID and need interrupt-masked access sequences.
	SharedSelector bool `yaml:"sharedSelector"`
	// Fifo marks per-channel FIFO hardware (burst length / threshold
	// controls).
	Fifo bool `yaml:"fifo"`
}

// OscctrlInfo describes the family's oscillator controller; a zero base
// means the family is not covered by the v2 clock driver.
type OscctrlInfo struct {
	Base uint32 `yaml:"base"`
}

func (t Targets) FindBySeries(name string) (TargetInfo, error) {
	for _, target := range t {
		if target.Series == strings.ToLower(name) {
			return target, nil
		}
	}
	return TargetInfo{}, ErrTargetNotFound
}

func (t Targets) FindByChip(name string) (TargetInfo, error) {
	for _, target := range t {
		if slices.Contains(target.Chips, strings.ToLower(name)) {
			return target, nil
		}
	}
	return TargetInfo{}, ErrTargetNotFound
}

func init() {
	var t struct {
		Elements []TargetInfo `yaml:"targets"`
	}
	if err := yaml.Unmarshal(rawTargets, &t); err != nil {
		panic(err)
	}

	targets = t.Elements
}
