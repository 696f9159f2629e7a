package cmd

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2020-01-02T03:04+0500"
	osArch           = "linux"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use: "sdw",
	Long: `
                       _     _                 _            _
  ___ _ __   __ _ _ __| | __(_)/ _|_   _    __| |_      __ | |__
 / __| '_ \ / _' | '__| |/ /| | |_| | | |  / _' \ \ /\ / / | '_ \
 \__ \ |_) | (_| | |  |   < | |  _| |_| | | (_| |\ V  V /  | | | |
 |___/ .__/ \__,_|_|  |_|\_\|_|_|  \__, |  \__,_| \_/\_/   |_| |_|
     |_|                           |___/

sdw launches the Sparkify Redshift warehouse and runs the DAG that loads it.
Describe the cluster in dwh.cfg, launch it, create the tables, then run the
DAG once or serve it on its hourly schedule with an HTTP API to trigger, watch
and stop runs. Tear the cluster down again when you are done.`,
}

func init() {
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(func() error { return execute12FactorMode(twelveFactorActions) })
		} else {
			if err := execute12FactorMode(twelveFactorActions); err != nil {
				// execute12FactorMode prints the error.
				os.Exit(1)
			}
		}
	} else { // else we're using CLI args and flags via Cobra...
		if err := rootCmd.Execute(); err != nil {
			// Execute() prints the error.
			os.Exit(1)
		}
	}
}
