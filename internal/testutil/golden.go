// Package testutil provides shared test infrastructure for the population-
// dynamics core: scenario fixture loading and tolerance-based float
// comparison used across model/, agelength/, minimiser/ and mcmc/ tests.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"
)

// Scenario is a hand-authored reference configuration plus its expected
// outcome, loaded from testdata/*.yaml. Fixtures are authored by hand
// (unlike a machine-dumped golden dataset) so YAML is used in place of
// JSON.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	AgeLength   ScenarioAgeLength  `yaml:"age_length"`
	Minimiser   ScenarioMinimiser  `yaml:"minimiser,omitempty"`
	Expected    ScenarioExpected   `yaml:"expected"`
}

// ScenarioAgeLength mirrors the spec §8 "Age-length transition" reference
// scenario: a von Bertalanffy growth curve plus a CV and length-bin grid.
type ScenarioAgeLength struct {
	Linf          float64 `yaml:"linf"`
	K             float64 `yaml:"k"`
	T0            float64 `yaml:"t0"`
	CV            float64 `yaml:"cv"`
	Age           int     `yaml:"age"`
	LengthBinFrom int     `yaml:"length_bin_from"`
	LengthBinTo   int     `yaml:"length_bin_to"`
	LengthBinStep int     `yaml:"length_bin_step"`
}

// ScenarioMinimiser holds the starting parameter vector of the spec §8
// "Minimiser TwoSex" reference scenario; its expected converged vector
// and objective live in ScenarioExpected.
type ScenarioMinimiser struct {
	StartingValues []float64 `yaml:"starting_values"`
}

// ScenarioExpected holds the tolerance-checked expectations a test
// compares its computed results against.
type ScenarioExpected struct {
	RowSum              float64   `yaml:"row_sum"`
	PeakBinIndex         int       `yaml:"peak_bin_index"`
	ConvergedParameters  []float64 `yaml:"converged_parameters"`
	Objective            float64   `yaml:"objective"`
	CovarianceDiagonal   []float64 `yaml:"covariance_diagonal"`
}

// LoadScenario loads a named fixture from testdata/<name>.yaml, resolved
// relative to this source file the way the teacher's LoadGoldenDataset
// resolves testdata/goldendataset.json relative to its own file.
func LoadScenario(t *testing.T, name string) *Scenario {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata", name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read scenario fixture %s: %v", name, err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		t.Fatalf("failed to parse scenario fixture %s: %v", name, err)
	}
	return &scenario
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertFloat64Within compares two float64 values with an absolute
// tolerance, used for the spec §8 invariants stated as absolute bounds
// (e.g. "row sums to 1.0 ± 1e-9").
func AssertFloat64Within(t *testing.T, name string, want, got, absTol float64) {
	t.Helper()
	if math.Abs(want-got) > absTol {
		t.Errorf("%s: got %v, want %v within %v", name, got, want, absTol)
	}
}
