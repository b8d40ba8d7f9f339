package mpdio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/popdyn/casalcore/mcmc"
)

// ObjectiveStreamHeader is the starting-covariance block written once at
// the top of an MCMC objective stream (spec §6):
//
//	starting_covariance_matrix {m}
//	<m rows of m space-separated doubles>
//	samples {d}
type ObjectiveStreamHeader struct {
	StartingCovariance [][]float64
	SampleColumns      int
}

// ObjectiveStreamWriter appends ChainLink rows to an MCMC objective stream
// following the exact column order spec §6 names: sample, state,
// objective_score, prior, likelihood, penalties, additional_priors,
// jacobians, step_size, acceptance_rate, acceptance_rate_since_adapt.
type ObjectiveStreamWriter struct {
	w       *bufio.Writer
	started bool
}

func NewObjectiveStreamWriter(w io.Writer) *ObjectiveStreamWriter {
	return &ObjectiveStreamWriter{w: bufio.NewWriter(w)}
}

// WriteHeader emits the starting_covariance_matrix block and the samples
// column count, and must be called exactly once before any WriteLink.
func (s *ObjectiveStreamWriter) WriteHeader(h ObjectiveStreamHeader) error {
	m := len(h.StartingCovariance)
	fmt.Fprintf(s.w, "starting_covariance_matrix %d\n", m)
	for _, row := range h.StartingCovariance {
		fmt.Fprintln(s.w, joinFloats(row))
	}
	fmt.Fprintf(s.w, "samples %d\n", h.SampleColumns)
	fmt.Fprintln(s.w, "sample state objective_score prior likelihood penalties additional_priors jacobians step_size acceptance_rate acceptance_rate_since_adapt")
	s.started = true
	return s.w.Flush()
}

// WriteLink appends one row for the given chain link.
func (s *ObjectiveStreamWriter) WriteLink(link mcmc.ChainLink) error {
	if !s.started {
		return fmt.Errorf("mpdio: WriteHeader must be called before WriteLink")
	}
	fmt.Fprintf(s.w, "%d %s %s %s %s %s %s %s %s %s %s\n",
		link.Iteration,
		link.StateTag,
		formatFloat(link.TotalScore),
		formatFloat(link.Prior),
		formatFloat(link.Likelihood),
		formatFloat(link.Penalty),
		formatFloat(link.AdditionalPriors),
		formatFloat(link.Jacobians),
		formatFloat(link.StepSize),
		formatFloat(link.AcceptanceRate),
		formatFloat(link.AcceptanceRateSinceAdapt),
	)
	return s.w.Flush()
}

// ReadObjectiveStream parses a complete objective stream into its header
// and the sequence of ChainLinks it recorded (the parameter-value field of
// each link is left empty; those live in the companion sample stream).
func ReadObjectiveStream(r io.Reader) (ObjectiveStreamHeader, []mcmc.ChainLink, error) {
	scanner := bufio.NewScanner(r)
	var header ObjectiveStreamHeader
	lineNo := 0
	nextLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		lineNo++
		return normaliseLine(scanner.Text()), true
	}

	line, ok := nextLine()
	if !ok {
		return header, nil, fmt.Errorf("mpdio: empty objective stream")
	}
	m, err := parseLabelledInt(line, "starting_covariance_matrix")
	if err != nil {
		return header, nil, fmt.Errorf("mpdio: line %d: %w", lineNo, err)
	}
	for i := 0; i < m; i++ {
		line, ok = nextLine()
		if !ok {
			return header, nil, fmt.Errorf("mpdio: line %d: missing starting covariance row %d", lineNo, i)
		}
		row, err := parseFloats(line)
		if err != nil {
			return header, nil, fmt.Errorf("mpdio: line %d: %w", lineNo, err)
		}
		header.StartingCovariance = append(header.StartingCovariance, row)
	}

	line, ok = nextLine()
	if !ok {
		return header, nil, fmt.Errorf("mpdio: line %d: expected 'samples {d}'", lineNo)
	}
	d, err := parseLabelledInt(line, "samples")
	if err != nil {
		return header, nil, fmt.Errorf("mpdio: line %d: %w", lineNo, err)
	}
	header.SampleColumns = d

	if _, ok = nextLine(); !ok {
		return header, nil, fmt.Errorf("mpdio: line %d: missing column header row", lineNo)
	}

	var links []mcmc.ChainLink
	for {
		line, ok = nextLine()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		link, err := parseObjectiveRow(line)
		if err != nil {
			return header, nil, fmt.Errorf("mpdio: line %d: %w", lineNo, err)
		}
		links = append(links, link)
	}
	return header, links, scanner.Err()
}

func parseObjectiveRow(line string) (mcmc.ChainLink, error) {
	fields := strings.Fields(line)
	if len(fields) != 11 {
		return mcmc.ChainLink{}, fmt.Errorf("expected 11 columns, got %d", len(fields))
	}
	iteration, err := strconv.Atoi(fields[0])
	if err != nil {
		return mcmc.ChainLink{}, fmt.Errorf("unparseable sample index %q", fields[0])
	}
	vals := make([]float64, 9)
	for i := 0; i < 9; i++ {
		v, err := strconv.ParseFloat(fields[i+2], 64)
		if err != nil {
			return mcmc.ChainLink{}, fmt.Errorf("unparseable token %q", fields[i+2])
		}
		vals[i] = v
	}
	return mcmc.ChainLink{
		Iteration:                iteration,
		StateTag:                 mcmc.StateTag(fields[1]),
		TotalScore:               vals[0],
		Prior:                    vals[1],
		Likelihood:               vals[2],
		Penalty:                  vals[3],
		AdditionalPriors:         vals[4],
		Jacobians:                vals[5],
		StepSize:                 vals[6],
		AcceptanceRate:           vals[7],
		AcceptanceRateSinceAdapt: vals[8],
	}, nil
}

// SampleStreamWriter writes the companion *mcmc_sample[mcmc] stream (spec
// §6): the parameter labels, then one row of estimate values per kept
// iteration.
type SampleStreamWriter struct {
	w          *bufio.Writer
	wroteLabel bool
}

func NewSampleStreamWriter(w io.Writer) *SampleStreamWriter {
	return &SampleStreamWriter{w: bufio.NewWriter(w)}
}

func (s *SampleStreamWriter) WriteHeader(parameters []string) error {
	fmt.Fprintln(s.w, "*mcmc_sample[mcmc]")
	fmt.Fprintln(s.w, strings.Join(parameters, " "))
	s.wroteLabel = true
	return s.w.Flush()
}

func (s *SampleStreamWriter) WriteValues(values []float64) error {
	if !s.wroteLabel {
		return fmt.Errorf("mpdio: WriteHeader must be called before WriteValues")
	}
	fmt.Fprintln(s.w, joinFloats(values))
	return s.w.Flush()
}

// ReadSampleStream parses the parameter labels and every row of sampled
// values from a *mcmc_sample[mcmc] stream.
func ReadSampleStream(r io.Reader) ([]string, [][]float64, error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	nextLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		lineNo++
		return normaliseLine(scanner.Text()), true
	}

	header, ok := nextLine()
	if !ok || header != "*mcmc_sample[mcmc]" {
		return nil, nil, fmt.Errorf("mpdio: line %d: expected '*mcmc_sample[mcmc]', got %q", lineNo, header)
	}
	line, ok := nextLine()
	if !ok {
		return nil, nil, fmt.Errorf("mpdio: line %d: missing parameter label row", lineNo)
	}
	parameters := fields(line)

	var rows [][]float64
	for {
		line, ok = nextLine()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		vals, err := parseFloats(line)
		if err != nil {
			return nil, nil, fmt.Errorf("mpdio: line %d: %w", lineNo, err)
		}
		if len(vals) != len(parameters) {
			return nil, nil, fmt.Errorf("mpdio: line %d: %d values for %d parameters", lineNo, len(vals), len(parameters))
		}
		rows = append(rows, vals)
	}
	return parameters, rows, scanner.Err()
}

func parseLabelledInt(line, label string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != label {
		return 0, fmt.Errorf("expected '%s {n}', got %q", label, line)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("unparseable count %q", fields[1])
	}
	return n, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
