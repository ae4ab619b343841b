package report

import (
	"fmt"
	"io"

	"github.com/weiihann/lebbench/harness"
)

// Source is one implementation's set of results.
type Source struct {
	Name    string
	Results []harness.Result
}

// Compare writes a markdown table comparing ns/value across sources. The
// first source is the baseline: each row's ratio is its ns/value over the
// baseline's fastest ns/value for the same scenario, so a ratio below 1 means
// faster than the baseline.
func Compare(w io.Writer, sources []Source) error {
	if len(sources) < 2 {
		return fmt.Errorf("need at least two sources to compare, got %d",
			len(sources))
	}

	baseline := fastestByScenario(sources[0].Results)
	order := scenarioOrder(sources)

	fmt.Fprintf(w, "## Comparison (baseline: %s)\n", sources[0].Name)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Scenario | Source | Impl | ns/value | Ratio |")
	fmt.Fprintln(w, "|----------|--------|------|----------|-------|")

	for _, scenario := range order {
		base, hasBase := baseline[scenario]

		for _, src := range sources {
			for _, r := range src.Results {
				if r.Scenario != scenario {
					continue
				}

				ratio := "-"
				if hasBase {
					ratio = fmt.Sprintf("%.3f", r.NsPerValue/base)
				}

				fmt.Fprintf(w, "| %s | %s | %s | %.6f | %s |\n",
					scenario, src.Name, r.Impl, r.NsPerValue, ratio,
				)
			}
		}
	}

	missing := missingScenarios(sources, order)
	if len(missing) > 0 {
		fmt.Fprintln(w)

		for _, m := range missing {
			fmt.Fprintf(w, "  - %s: no result for %s\n", m.source, m.scenario)
		}
	}

	return nil
}

func scenarioOrder(sources []Source) []string {
	seen := make(map[string]bool)

	var order []string

	for _, src := range sources {
		for _, r := range src.Results {
			if !seen[r.Scenario] {
				seen[r.Scenario] = true
				order = append(order, r.Scenario)
			}
		}
	}

	return order
}

type gap struct {
	source   string
	scenario string
}

func missingScenarios(sources []Source, order []string) []gap {
	var missing []gap

	for _, src := range sources {
		have := make(map[string]bool, len(src.Results))
		for _, r := range src.Results {
			have[r.Scenario] = true
		}

		for _, scenario := range order {
			if !have[scenario] {
				missing = append(missing, gap{src.Name, scenario})
			}
		}
	}

	return missing
}
