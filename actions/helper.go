package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/ghodss/yaml"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/logger"
)

// Output formats accepted by the show and status actions.
const (
	OutputTable = "table"
	OutputYaml  = "yaml"
	OutputJson  = "json"
)

func out(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

func newLogger(level string, stackDumpOnPanic bool) logger.Logger {
	if level == "" {
		level = "info"
	}
	return logger.NewLogger(c.AppName, level, stackDumpOnPanic)
}

// writeStructured marshals i as YAML or indented JSON to w.
func writeStructured(w io.Writer, i interface{}, format string) error {
	var err error
	var data []byte
	switch strings.ToLower(format) {
	case OutputYaml:
		data, err = yaml.Marshal(i)
	case OutputJson:
		data, err = json.MarshalIndent(i, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("unable to marshal output: %w", err)
	}
	_, err = out(w).Write(data)
	return err
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(log logger.Logger, parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	chanOS := make(chan os.Signal, 2)
	signal.Notify(chanOS, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case s := <-chanOS:
			log.Warn("Received ", s, ", stopping...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(chanOS)
	}()
	return ctx, cancel
}

// stateColour picks the colour used to print a task or run state.
func stateColour(s dag.State) *color.Color {
	switch s {
	case dag.StateSuccess:
		return color.New(color.FgGreen)
	case dag.StateFailed, dag.StateUpstreamFailed:
		return color.New(color.FgRed)
	case dag.StateShutdown, dag.StateUpForRetry:
		return color.New(color.FgYellow)
	}
	return color.New(color.Reset)
}
