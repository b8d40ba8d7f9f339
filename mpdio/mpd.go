// Package mpdio reads and writes the MPD (mode-of-the-posterior-
// distribution) file and the MCMC objective/sample stream formats (spec
// §6), the core's sole file-format responsibility — everything else
// (configuration parsing, report formatting) stays an external
// collaborator.
package mpdio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// MPD is the point-estimate dump: parameter labels, their values, and
// the covariance matrix produced by the minimiser (spec §6).
type MPD struct {
	Label      string
	Parameters []string
	Values     []float64
	Covariance *mat.Dense
}

// WriteMPD writes the exact text grammar spec §6 describes:
//
//	*mpd[<label>]
//	estimate_values:
//	<parameter1> <parameter2> ... <parameterN>
//	<value1> <value2> ... <valueN>
//	covariance_matrix:
//	<N rows of N space-separated doubles>
//	*end
func WriteMPD(w io.Writer, m MPD) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "*mpd[%s]\n", m.Label)
	fmt.Fprintln(bw, "estimate_values:")
	fmt.Fprintln(bw, strings.Join(m.Parameters, " "))
	fmt.Fprintln(bw, joinFloats(m.Values))
	fmt.Fprintln(bw, "covariance_matrix:")
	if m.Covariance != nil {
		n, _ := m.Covariance.Dims()
		for i := 0; i < n; i++ {
			row := make([]float64, n)
			for j := 0; j < n; j++ {
				row[j] = m.Covariance.At(i, j)
			}
			fmt.Fprintln(bw, joinFloats(row))
		}
	}
	fmt.Fprintln(bw, "*end")
	return bw.Flush()
}

// ReadMPD parses the grammar WriteMPD emits. Whitespace is any run of
// spaces/tabs, tabs normalised to spaces, trailing whitespace trimmed;
// any unexpected token returns an error citing the line (spec §6).
func ReadMPD(r io.Reader) (MPD, error) {
	scanner := bufio.NewScanner(r)
	var m MPD
	lineNo := 0
	nextLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		lineNo++
		return normaliseLine(scanner.Text()), true
	}

	header, ok := nextLine()
	if !ok {
		return m, fmt.Errorf("mpd: empty input")
	}
	if !strings.HasPrefix(header, "*mpd[") || !strings.HasSuffix(header, "]") {
		return m, fmt.Errorf("mpd: line %d: expected '*mpd[<label>]', got %q", lineNo, header)
	}
	m.Label = strings.TrimSuffix(strings.TrimPrefix(header, "*mpd["), "]")

	line, ok := nextLine()
	if !ok || line != "estimate_values:" {
		return m, fmt.Errorf("mpd: line %d: expected 'estimate_values:', got %q", lineNo, line)
	}

	line, ok = nextLine()
	if !ok {
		return m, fmt.Errorf("mpd: line %d: missing parameter label row", lineNo)
	}
	m.Parameters = fields(line)

	line, ok = nextLine()
	if !ok {
		return m, fmt.Errorf("mpd: line %d: missing value row", lineNo)
	}
	values, err := parseFloats(line)
	if err != nil {
		return m, fmt.Errorf("mpd: line %d: %w", lineNo, err)
	}
	if len(values) != len(m.Parameters) {
		return m, fmt.Errorf("mpd: line %d: %d values for %d parameters", lineNo, len(values), len(m.Parameters))
	}
	m.Values = values

	line, ok = nextLine()
	if !ok || line != "covariance_matrix:" {
		return m, fmt.Errorf("mpd: line %d: expected 'covariance_matrix:', got %q", lineNo, line)
	}

	n := len(m.Parameters)
	cov := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		line, ok = nextLine()
		if !ok {
			return m, fmt.Errorf("mpd: line %d: missing covariance row %d", lineNo, i)
		}
		row, err := parseFloats(line)
		if err != nil {
			return m, fmt.Errorf("mpd: line %d: %w", lineNo, err)
		}
		if len(row) != n {
			return m, fmt.Errorf("mpd: line %d: covariance row %d has %d entries, want %d", lineNo, i, len(row), n)
		}
		cov.SetRow(i, row)
	}
	m.Covariance = cov

	line, ok = nextLine()
	if !ok || line != "*end" {
		return m, fmt.Errorf("mpd: line %d: expected '*end', got %q", lineNo, line)
	}
	return m, scanner.Err()
}

func normaliseLine(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimRight(s, " \r\n")
}

func fields(s string) []string {
	return strings.Fields(s)
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Fields(s)
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("unparseable token %q", p)
		}
		out[i] = v
	}
	return out, nil
}

func joinFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
