package applog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutputCapturesLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	Info("hello %s", "world")
	Error("boom %d", 42)
	Event("gateway", "timeout after %dms", 5000)

	out := buf.String()
	assert.Contains(t, out, "INFO  hello world")
	assert.Contains(t, out, "ERROR boom 42")
	assert.Contains(t, out, "gateway      timeout after 5000ms")
}

func TestNilOutputIsSilent(t *testing.T) {
	SetOutput(nil)
	assert.NotPanics(t, func() { Warn("nobody listens") })
}
