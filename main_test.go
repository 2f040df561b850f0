package main

import (
	"strings"
	"testing"
)

func TestRenderANSIWrapsBoldTokenInSGR(t *testing.T) {
	got := renderANSI("plain **bold** plain")
	if !strings.Contains(got, "\x1b[1m") {
		t.Errorf("expected bold SGR escape in output, got %q", got)
	}
	if !strings.Contains(got, "bold") {
		t.Errorf("expected literal text preserved, got %q", got)
	}
}

func TestRenderANSIPlainTextHasNoEscapes(t *testing.T) {
	got := renderANSI("just plain text")
	if strings.Contains(got, "\x1b[") {
		t.Errorf("expected no SGR escapes for unstyled text, got %q", got)
	}
}

func TestRenderANSINamedColorToken(t *testing.T) {
	got := renderANSI("#cyan(hi)")
	if !strings.Contains(got, "\x1b[38;2;") {
		t.Errorf("expected a truecolor foreground escape, got %q", got)
	}
}

func TestDemoProducesNonEmptyOutput(t *testing.T) {
	if out := demo(); out == "" {
		t.Error("expected demo to produce non-empty preview text")
	}
}
