package harness

import (
	"fmt"

	"github.com/weiihann/lebbench/fixture"
	"github.com/weiihann/lebbench/varint"
)

// Scenario names a fixture and the integer width it is decoded as.
// Bound is the exclusive upper limit of generated values.
type Scenario struct {
	Name  string
	Width varint.Width
	Bound uint32
}

// Decoder returns the built-in decoder for the scenario's width.
func (s Scenario) Decoder() varint.Decoder {
	return varint.ForWidth(s.Width)
}

var scenarios = []Scenario{
	// [0, 2^7): always single-byte encodings.
	{Name: "u8_1b", Width: varint.Narrow, Bound: 100},
	// [0, 2^8): one or two bytes.
	{Name: "u8_2b", Width: varint.Narrow, Bound: 200},
	// [0, 2^14): one or two bytes decoded as 16-bit.
	{Name: "u16_2b", Width: varint.Wide, Bound: 2048},
}

// Scenarios returns the fixed scenario set in benchmark order.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)

	return out
}

// ScenarioNames returns the names of Scenarios.
func ScenarioNames() []string {
	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}

	return names
}

// LookupScenario returns the scenario with the given name.
func LookupScenario(name string) (Scenario, error) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, nil
		}
	}

	return Scenario{}, fmt.Errorf("unknown scenario %q", name)
}

// SelectScenarios resolves names to scenarios, returning all of them when
// names is empty.
func SelectScenarios(names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return Scenarios(), nil
	}

	out := make([]Scenario, 0, len(names))
	for _, name := range names {
		s, err := LookupScenario(name)
		if err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, nil
}

// ResolveFixture returns the fixture path for a scenario under dataDir.
func ResolveFixture(dataDir string, s Scenario) string {
	return fixture.Path(dataDir, s.Name)
}
