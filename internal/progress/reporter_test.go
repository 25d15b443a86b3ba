package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf, Description: "Importing channels"}
	r.Start(2)
	r.Update(1, "#alpha")
	r.Update(2, "#beta")
	r.Finish()

	want := "Importing channels: 2 items\n[1/2] #alpha\n[2/2] #beta\nImporting channels: done\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestCIReporterUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf, Description: "Importing"}
	r.Start(-1)
	r.Update(3, "#gamma")
	if !strings.Contains(buf.String(), "[3] #gamma") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNewReporterCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}
