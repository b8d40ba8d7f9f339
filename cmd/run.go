// cmd/run.go wires the seven run modes (spec §6) to the runner package.
// Assembling a runner.Session from --config is the configuration-grammar
// collaborator's job (spec §1: "configuration-file parsing" is
// deliberately out of scope for this core); buildSession is the seam that
// collaborator fills in.
package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/popdyn/casalcore/runner"
)

// buildSession assembles a runner.Session from a parsed configuration
// file. The core ships no implementation; a configuration-grammar
// collaborator is expected to set this before Execute is called.
var buildSession func(configPath string, seed int64, startYear, endYear int) (*runner.Session, error)

func requireSession() (*runner.Session, error) {
	if buildSession == nil {
		return nil, fmt.Errorf("no configuration collaborator registered: cmd.buildSession is nil")
	}
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	return buildSession(configPath, seed, startYear, endYear)
}

var basicCmd = &cobra.Command{
	Use:   "basic",
	Short: "Build and run the annual cycle once, reporting the final state",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		s, err := requireSession()
		if err != nil {
			logrus.Fatal(err)
		}
		if err := runner.RunBasic(s); err != nil {
			logrus.Fatal(err)
		}
	},
}

var estimationCmd = &cobra.Command{
	Use:   "estimation",
	Short: "Locate the point estimate by minimisation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		s, err := requireSession()
		if err != nil {
			logrus.Fatal(err)
		}
		result, err := runner.RunEstimation(s)
		if err != nil {
			logrus.Fatal(err)
		}
		logrus.Infof("outcome=%s objective=%.6g iterations=%d evaluations=%d",
			result.Outcome, result.Objective, result.Iterations, result.Evaluations)
	},
}

var mcmcCmd = &cobra.Command{
	Use:   "mcmc",
	Short: "Explore the posterior with random-walk Metropolis-Hastings or leap-frog HMC",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		s, err := requireSession()
		if err != nil {
			logrus.Fatal(err)
		}
		s.ChainLength = chainLength
		s.BurnIn = burnIn
		s.Keep = keep
		chain, err := runner.RunMCMC(s)
		if err != nil {
			logrus.Fatal(err)
		}
		logrus.Infof("mcmc run complete: %d links kept", chain.Len())
	},
}

var profilingCmd = &cobra.Command{
	Use:   "profiling",
	Short: "Time repeated annual-cycle executions",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		s, err := requireSession()
		if err != nil {
			logrus.Fatal(err)
		}
		d, err := runner.RunProfiling(s, iterations)
		if err != nil {
			logrus.Fatal(err)
		}
		logrus.Infof("average annual-cycle duration over %d iterations: %s", iterations, d)
	},
}

var projectionCmd = &cobra.Command{
	Use:   "projection",
	Short: "Project the partition forward past the historical period",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		s, err := requireSession()
		if err != nil {
			logrus.Fatal(err)
		}
		if err := runner.RunProjection(s, extraYears); err != nil {
			logrus.Fatal(err)
		}
	},
}

var simulationCmd = &cobra.Command{
	Use:   "simulation",
	Short: "Run the annual cycle forward with stochastic recruitment deviations",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		s, err := requireSession()
		if err != nil {
			logrus.Fatal(err)
		}
		if err := runner.RunSimulation(s); err != nil {
			logrus.Fatal(err)
		}
	},
}

var testingCmd = &cobra.Command{
	Use:   "testing",
	Short: "Run the basic cycle, promoting warnings to fatal errors",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		s, err := requireSession()
		if err != nil {
			logrus.Fatal(err)
		}
		if err := runner.RunTesting(s); err != nil {
			logrus.Fatal(err)
		}
	},
}
