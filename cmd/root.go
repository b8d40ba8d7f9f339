// cmd/root.go
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	logLevel    string
	seed        int64
	startYear   int
	endYear     int
	chainLength int
	burnIn      int
	keep        int
	iterations  int
	extraYears  int
)

var rootCmd = &cobra.Command{
	Use:   "casalcore",
	Short: "Age/length-structured fisheries population-dynamics engine",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the block-structured configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "master RNG seed")
	rootCmd.PersistentFlags().IntVar(&startYear, "start-year", 0, "first historical year of the annual cycle")
	rootCmd.PersistentFlags().IntVar(&endYear, "end-year", 0, "last historical year of the annual cycle")

	rootCmd.AddCommand(basicCmd)
	rootCmd.AddCommand(estimationCmd)
	rootCmd.AddCommand(mcmcCmd)
	rootCmd.AddCommand(profilingCmd)
	rootCmd.AddCommand(projectionCmd)
	rootCmd.AddCommand(simulationCmd)
	rootCmd.AddCommand(testingCmd)

	mcmcCmd.Flags().IntVar(&chainLength, "length", 1000, "number of MCMC iterations to run")
	mcmcCmd.Flags().IntVar(&burnIn, "burn-in", 0, "iterations tagged burn_in before mcmc state")
	mcmcCmd.Flags().IntVar(&keep, "keep", 1, "keep every Nth iteration in the chain")

	profilingCmd.Flags().IntVar(&iterations, "iterations", 10, "number of annual-cycle repetitions to time")

	projectionCmd.Flags().IntVar(&extraYears, "additional-years", 10, "years to project forward past end-year")
}
