package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole_Println(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.Println("hello")
	if got := out.String(); got != "hello\n" {
		t.Errorf("Println() = %q, want %q", got, "hello\n")
	}
}

func TestConsole_Printf(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.Printf("hello %s", "world")
	if got := out.String(); got != "hello world" {
		t.Errorf("Printf() = %q, want %q", got, "hello world")
	}
}

func TestConsole_Success(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.SetColors(false)
	c.Success("operation succeeded")
	if !strings.Contains(out.String(), "operation succeeded") {
		t.Errorf("Success() output doesn't contain expected message")
	}
}

func TestConsole_ErrorGoesToStderr(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	c := NewConsole(&outBuf, &errBuf, VerbosityNormal)
	c.SetColors(false)
	c.Error("something broke")
	if outBuf.Len() != 0 {
		t.Errorf("Error() wrote to stdout: %q", outBuf.String())
	}
	if got := errBuf.String(); !strings.Contains(got, "Error: something broke") {
		t.Errorf("Error() = %q, want Error: prefix", got)
	}
}

func TestConsole_QuietSuppressesInfo(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityQuiet)
	c.SetColors(false)
	c.Info("hidden")
	c.Warning("also hidden")
	c.Success("still hidden")
	if out.Len() != 0 {
		t.Errorf("quiet console produced output: %q", out.String())
	}
}

func TestConsole_QuietStillShowsErrors(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	c := NewConsole(&outBuf, &errBuf, VerbosityQuiet)
	c.SetColors(false)
	c.Error("shown")
	if !strings.Contains(errBuf.String(), "shown") {
		t.Errorf("quiet console dropped error output")
	}
}

func TestConsole_DetailRequiresDetailedVerbosity(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.SetColors(false)
	c.Detail("per-item line")
	if out.Len() != 0 {
		t.Errorf("Detail() shown at normal verbosity: %q", out.String())
	}

	c.SetVerbosity(VerbosityDetailed)
	c.Detail("per-item line")
	if !strings.Contains(out.String(), "per-item line") {
		t.Errorf("Detail() not shown at detailed verbosity")
	}
}
