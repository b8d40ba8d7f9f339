package mpdio

import (
	"bytes"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/popdyn/casalcore/mcmc"
)

func TestWriteReadMPDRoundTrip(t *testing.T) {
	m := MPD{
		Label:      "estimate_phase",
		Parameters: []string{"R0", "M"},
		Values:     []float64{12.5, 0.2},
		Covariance: mat.NewDense(2, 2, []float64{0.1, 0.01, 0.01, 0.05}),
	}
	var buf bytes.Buffer
	if err := WriteMPD(&buf, m); err != nil {
		t.Fatalf("WriteMPD: %v", err)
	}

	got, err := ReadMPD(&buf)
	if err != nil {
		t.Fatalf("ReadMPD: %v", err)
	}
	if got.Label != m.Label {
		t.Errorf("label = %q, want %q", got.Label, m.Label)
	}
	if len(got.Parameters) != 2 || got.Parameters[0] != "R0" || got.Parameters[1] != "M" {
		t.Errorf("parameters = %v", got.Parameters)
	}
	if got.Values[0] != 12.5 || got.Values[1] != 0.2 {
		t.Errorf("values = %v", got.Values)
	}
	if got.Covariance.At(1, 0) != 0.01 {
		t.Errorf("covariance[1][0] = %v, want 0.01", got.Covariance.At(1, 0))
	}
}

func TestReadMPDRejectsMalformedHeader(t *testing.T) {
	_, err := ReadMPD(strings.NewReader("not an mpd header\n"))
	if err == nil {
		t.Fatalf("expected an error for a malformed header")
	}
}

func TestReadMPDNormalisesTabs(t *testing.T) {
	input := "*mpd[x]\nestimate_values:\nR0\t M\n1.0\t2.0\ncovariance_matrix:\n1\t0\n0\t1\n*end\n"
	got, err := ReadMPD(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadMPD: %v", err)
	}
	if len(got.Parameters) != 2 {
		t.Fatalf("expected 2 parameters after tab normalisation, got %v", got.Parameters)
	}
}

func TestObjectiveStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewObjectiveStreamWriter(&buf)
	header := ObjectiveStreamHeader{
		StartingCovariance: [][]float64{{1, 0}, {0, 1}},
		SampleColumns:      2,
	}
	if err := w.WriteHeader(header); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	link := mcmc.ChainLink{
		Iteration:                1,
		StateTag:                 mcmc.StateMCMC,
		TotalScore:               3.5,
		Likelihood:               2.0,
		Prior:                    1.5,
		Penalty:                  0,
		AdditionalPriors:         0,
		Jacobians:                0,
		StepSize:                 0.9,
		AcceptanceRate:           0.3,
		AcceptanceRateSinceAdapt: 0.25,
	}
	if err := w.WriteLink(link); err != nil {
		t.Fatalf("WriteLink: %v", err)
	}

	gotHeader, gotLinks, err := ReadObjectiveStream(&buf)
	if err != nil {
		t.Fatalf("ReadObjectiveStream: %v", err)
	}
	if gotHeader.SampleColumns != 2 || len(gotHeader.StartingCovariance) != 2 {
		t.Errorf("header = %+v", gotHeader)
	}
	if len(gotLinks) != 1 {
		t.Fatalf("expected 1 link, got %d", len(gotLinks))
	}
	if gotLinks[0].TotalScore != 3.5 || gotLinks[0].StateTag != mcmc.StateMCMC {
		t.Errorf("link = %+v", gotLinks[0])
	}
}

func TestSampleStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewSampleStreamWriter(&buf)
	if err := w.WriteHeader([]string{"R0", "M"}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	if err := w.WriteValues([]float64{10, 0.2}); err != nil {
		t.Fatalf("WriteValues: %v", err)
	}
	if err := w.WriteValues([]float64{11, 0.21}); err != nil {
		t.Fatalf("WriteValues: %v", err)
	}

	parameters, rows, err := ReadSampleStream(&buf)
	if err != nil {
		t.Fatalf("ReadSampleStream: %v", err)
	}
	if len(parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %v", parameters)
	}
	if len(rows) != 2 || rows[1][0] != 11 {
		t.Errorf("rows = %v", rows)
	}
}
