package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/relloyd/sparkify-dwh/actions"
	"github.com/relloyd/sparkify-dwh/cluster"
	"github.com/relloyd/sparkify-dwh/config"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/relloyd/sparkify-dwh/pipeline"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by the actions.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(c.EnvVarTwelveFactor)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		lambdaMode = strings.ToLower(mode) == c.TwelveFactorModeLambda
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const envVarSubcommand = c.EnvVarPrefix + "_" + "SUBCOMMAND"

var (
	twelveFactorMode bool // true if os env var c.EnvVarTwelveFactor is set
	lambdaMode       bool // true if c.EnvVarTwelveFactor is "lambda"
	twelveFactorVars = map[string]string{
		c.EnvVarCommand:                       "",
		envVarSubcommand:                      "",
		helper.GetFlagEnvVarName("log-level"): "",
		helper.GetDsnEnvVarName(pipeline.DefaultRedshiftConnID): "",
		actions.EnvVarAwsAccessKeyId:                            "",
		actions.EnvVarAwsSecretAccessKey:                        "",
		actions.EnvVarAwsRegion:                                 "",
	}
	twelveFactorVarsSensitive = map[string]string{ // used to flag some of the above variables as being sensitive.
		helper.GetDsnEnvVarName(pipeline.DefaultRedshiftConnID): "",
		actions.EnvVarAwsSecretAccessKey:                        "",
	}
)

type twelveFactorAction struct {
	setupFunc  func()
	runnerFunc func() error
}

// twelveFactorActions are keyed by <SDW_COMMAND>-<SDW_SUBCOMMAND> and mirror the cobra commands of the same name.
var twelveFactorActions = map[string]twelveFactorAction{
	"cluster-launch": {
		setupFunc:  func() { clusterCfg.Connections = getConnectionSaver() },
		runnerFunc: func() error { return actions.RunLaunch(&clusterCfg) },
	},
	"cluster-stop": {
		runnerFunc: func() error { return actions.RunStop(&clusterCfg) },
	},
	"cluster-status": {
		runnerFunc: func() error { return actions.RunStatus(&clusterCfg) },
	},
	"cluster-open-port": {
		runnerFunc: func() error { return actions.RunOpenPort(&clusterCfg) },
	},
	"tables-create": {
		setupFunc:  func() { tablesCfg.Connections = getConnectionLoader() },
		runnerFunc: func() error { return actions.RunCreateTables(&tablesCfg) },
	},
	"bucket-create": {
		setupFunc:  func() { bucketCfg.Connections = getConnectionLoader() },
		runnerFunc: func() error { return actions.RunCreateBucket(&bucketCfg) },
	},
	"dag-run": {
		setupFunc:  func() { dagRunFlags.apply(&dagRunCfg) },
		runnerFunc: func() error { return actions.RunDag(&dagRunCfg) },
	},
	"dag-show": {
		setupFunc:  func() { dagShowFlags.apply(&dagShowCfg) },
		runnerFunc: func() error { return actions.RunDagShow(&dagShowCfg) },
	},
	"dag-serve": {
		setupFunc:  func() { dagServeFlags.apply(&serveCfg.Dag) },
		runnerFunc: func() error { return actions.RunScheduler(&serveCfg) },
	},
}

// getConnectionLoader returns stored connections with environment overrides applied.
// In twelveFactorMode connections come from the environment alone.
func getConnectionLoader() actions.ConnectionLoader {
	if twelveFactorMode {
		return &actions.EnvConnections{}
	}
	return &actions.EnvConnections{Fallback: config.Connections}
}

// getConnectionSaver returns the store that cluster launch saves a connection into.
func getConnectionSaver() cluster.ConnectionSaver {
	if twelveFactorMode {
		return nil
	}
	return config.Connections
}

func getConnectionGetterSetter() actions.ConnectionGetterSetter {
	if twelveFactorMode {
		fmt.Printf("Error: connections cannot be configured when %v is set (supply them using %v and the AWS_* variables instead)\n",
			c.EnvVarTwelveFactor,
			helper.GetDsnEnvVarName("<connection-name>"))
		os.Exit(1)
	}
	return config.Connections
}

func twelveFactorActionNames(acts map[string]twelveFactorAction) string {
	names := make([]string, 0, len(acts))
	for k := range acts {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(helper.GetFlagEnvVarName("log-level"), "info")
	log := logger.NewLogger(c.AppName, logLevel, stackDumpOnPanic)
	log.Info("Running in 12 Factor mode...")
	for k := range twelveFactorVars { // for each env variable that we need...
		twelveFactorVars[k] = os.Getenv(k)
		if _, sensitive := twelveFactorVarsSensitive[k]; !sensitive {
			log.Debug(k, "=", twelveFactorVars[k])
		} else {
			log.Debug(k, "=", "<obfuscated>")
		}
	}
	// Use command and subcommand to fetch the appropriate action.
	action := fmt.Sprintf("%v-%v", twelveFactorVars[c.EnvVarCommand], twelveFactorVars[envVarSubcommand])
	a, ok := acts[action]
	if !ok {
		err = fmt.Errorf("invalid combination of command (%v) and subcommand (%v), use one of: %v",
			twelveFactorVars[c.EnvVarCommand], twelveFactorVars[envVarSubcommand], twelveFactorActionNames(acts))
		log.Error(err.Error())
		return
	}
	if a.setupFunc != nil {
		a.setupFunc()
	}
	err = a.runnerFunc()
	if err != nil {
		log.Error("Error: ", err)
	}
	return err
}
