package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" WARN "))
	assert.Equal(t, ERROR, ParseLevel("Error"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
	assert.Equal(t, INFO, ParseLevel(""))
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(WARN, &buf)

	l.Info("provisioned %s", "johnsmith")
	assert.Empty(t, buf.String())

	l.Warn("collision on %s", "johnsmith")
	assert.Contains(t, buf.String(), "[WARN] collision on johnsmith")
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "INFO", INFO.String())
	assert.Equal(t, "LEVEL(9)", Level(9).String())
}
