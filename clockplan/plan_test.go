package clockplan

import (
	"errors"
	"strings"
	"testing"

	"omibyte.io/samhal/clock"
)

const bringupPlan = `
sources:
  - name: xosc32k
    kind: fixed
    freq: 32768
  - name: dfll48m
    kind: dfll-closed
    mul: 1464
    ref: pclk-dfll
generators:
  - name: gclk0
    source: dfll48m
  - name: gclk3
    source: xosc32k
pclks:
  - name: pclk-dfll
    generator: gclk3
  - name: pclk-sercom0
    generator: gclk0
`

func mustResolve(t *testing.T, text string) ([]string, Frequencies) {
	t.Helper()
	plan, err := Load(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	order, freqs, err := plan.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	return order, freqs
}

func TestResolveFrequencies(t *testing.T) {
	_, freqs := mustResolve(t, bringupPlan)

	want := map[string]clock.Hertz{
		"xosc32k":      32_768,
		"gclk3":        32_768,
		"pclk-dfll":    32_768,
		"dfll48m":      32_768 * 1464, // the closest lock to 48 MHz
		"gclk0":        32_768 * 1464,
		"pclk-sercom0": 32_768 * 1464,
	}
	for name, f := range want {
		if got := freqs[name]; got != f {
			t.Errorf("%s = %d Hz, want %d Hz", name, got, f)
		}
	}
}

func TestResolveOrdersDependenciesFirst(t *testing.T) {
	order, _ := mustResolve(t, bringupPlan)

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	deps := [][2]string{
		{"xosc32k", "gclk3"},
		{"gclk3", "pclk-dfll"},
		{"pclk-dfll", "dfll48m"},
		{"dfll48m", "gclk0"},
		{"gclk0", "pclk-sercom0"},
	}
	for _, d := range deps {
		if pos[d[0]] > pos[d[1]] {
			t.Errorf("%s resolved after its dependent %s", d[0], d[1])
		}
	}
}

func TestGeneratorDivision(t *testing.T) {
	_, freqs := mustResolve(t, `
sources:
  - name: dfll48m
    kind: dfll-open
generators:
  - name: gclk1
    source: dfll48m
    div: 48
`)
	if got := freqs["dfll48m"]; got != 48_000_000 {
		t.Errorf("dfll48m = %d Hz, want 48000000", got)
	}
	if got := freqs["gclk1"]; got != 1_000_000 {
		t.Errorf("gclk1 = %d Hz, want 1000000", got)
	}
}

func TestResolveRejectsCycle(t *testing.T) {
	plan, err := Load(strings.NewReader(`
sources:
  - name: dfll48m
    kind: dfll-closed
    mul: 1464
    ref: pclk-dfll
generators:
  - name: gclk0
    source: dfll48m
pclks:
  - name: pclk-dfll
    generator: gclk0
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := plan.Resolve(); !errors.Is(err, ErrCycle) {
		t.Errorf("err = %v, want ErrCycle", err)
	}
}

func TestResolveRejectsUnknownReference(t *testing.T) {
	plan, err := Load(strings.NewReader(`
generators:
  - name: gclk0
    source: nonesuch
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := plan.Resolve(); !errors.Is(err, ErrUnknownRef) {
		t.Errorf("err = %v, want ErrUnknownRef", err)
	}
}

func TestResolveRejectsDuplicateName(t *testing.T) {
	plan, err := Load(strings.NewReader(`
sources:
  - name: osc
    kind: fixed
    freq: 1000
  - name: osc
    kind: fixed
    freq: 2000
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := plan.Resolve(); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName", err)
	}
}

func TestResolveRejectsBadSpecs(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"fixed without freq", `
sources:
  - name: osc
    kind: fixed
`},
		{"closed without ref", `
sources:
  - name: dfll48m
    kind: dfll-closed
`},
		{"unknown kind", `
sources:
  - name: osc
    kind: quartz
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := Load(strings.NewReader(tc.text))
			if err != nil {
				t.Fatal(err)
			}
			if _, _, err := plan.Resolve(); !errors.Is(err, ErrBadSpec) {
				t.Errorf("err = %v, want ErrBadSpec", err)
			}
		})
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader(`
sources:
  - name: osc
    kind: fixed
    freq: 1000
    color: blue
`))
	if err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}
