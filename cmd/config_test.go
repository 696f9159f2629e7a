package cmd

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultKeys(t *testing.T) {
	f := cliFlags{
		"mock":           cliFlag{name: "mock"},
		"output":         cliFlag{name: "output"},
		"query-output":   cliFlag{name: "output"},
		"dwh-config":     cliFlag{name: "dwh-config"},
		"dag-dwh-config": cliFlag{name: "dwh-config"},
		"bucket":         cliFlag{name: "bucket"},
	}
	got := strings.Join(defaultKeys(f), ",")
	if got != "bucket,dwh-config,output" {
		t.Fatalf("expected sorted unique flag names without mock; got %q", got)
	}
}

func TestCheckDefaultKey(t *testing.T) {
	for _, k := range []string{"dwh-config", "log-level", "bucket", "region", "aws-connection", "force"} {
		if err := checkDefaultKey(k); err != nil {
			t.Errorf("expected %q to be accepted; got %v", k, err)
		}
	}
	for _, k := range []string{"dag-dwh-config", "force-connection", "mock", "DWH-CONFIG", ""} {
		err := checkDefaultKey(k)
		if err == nil {
			t.Errorf("expected %q to be rejected", k)
			continue
		}
		if !strings.Contains(err.Error(), "dwh-config") {
			t.Errorf("expected the error to list the valid keys; got %v", err)
		}
	}
}

func TestConfigCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"config", "connections", "add", "redshift"},
		{"config", "connections", "add", "aws"},
		{"config", "conn", "ls"},
		{"config", "connections", "rm"},
		{"config", "defaults", "add"},
		{"config", "defaults", "list"},
		{"config", "defaults", "delete"},
		{"version"},
	} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil {
			t.Errorf("%v: %v", path, err)
			continue
		}
		if !cmd.Runnable() && !cmd.HasSubCommands() {
			t.Errorf("%v: command %q does nothing", path, cmd.CommandPath())
		}
	}
	cmd, _, err := rootCmd.Find([]string{"config", "connections", "remove"})
	if err != nil {
		t.Fatal(err)
	}
	if f := cmd.Flags().Lookup("connection-name"); f == nil || f.Shorthand != "c" {
		t.Fatal("expected flag connection-name with shorthand c")
	}
}

func TestPrintVersion(t *testing.T) {
	var b bytes.Buffer
	printVersion(&b)
	out := b.String()
	for _, s := range []string{"sdw", version, buildDate, runtime.Version(), "Config dir:"} {
		if !strings.Contains(out, s) {
			t.Errorf("expected version output to contain %q; got:\n%v", s, out)
		}
	}
}
