package constants

import (
	"regexp"
	"testing"
	"time"
)

func TestTimeFormat(t *testing.T) {
	// Check that a time zone component exists in the global time format.
	re := regexp.MustCompile("^.*0700$")
	if !re.MatchString(TimeFormatYearSecondsTZ) {
		t.Fatal("Unexpected time format - missing time zone component.")
	}
	d := time.Date(2018, 11, 1, 21, 0, 0, 0, time.UTC)
	if got := d.Format(TimeFormatDs); got != "2018-11-01" {
		t.Fatalf("unexpected ds format %q", got)
	}
	if got := d.Format(TimeFormatDsNodash); got != "20181101" {
		t.Fatalf("unexpected ds_nodash format %q", got)
	}
}

func TestEnvVarNames(t *testing.T) {
	if EnvVarCommand != "SDW_COMMAND" {
		t.Fatalf("unexpected command env var %q", EnvVarCommand)
	}
	if EnvVarTwelveFactor != "SDW_12FACTOR_MODE" {
		t.Fatalf("unexpected 12 factor env var %q", EnvVarTwelveFactor)
	}
}
