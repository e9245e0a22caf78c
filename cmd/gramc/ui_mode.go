package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

var uiModes = map[string]uiMode{
	"":      uiModeAuto,
	"auto":  uiModeAuto,
	"on":    uiModeOn,
	"true":  uiModeOn,
	"off":   uiModeOff,
	"false": uiModeOff,
}

func readUIMode(value string) (uiMode, error) {
	if m, ok := uiModes[strings.TrimSpace(strings.ToLower(value))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// progressView decides whether a compile shows the live progress view. The
// view owns the terminal while tools run, so auto keeps it off whenever
// something else writes there.
type progressView struct {
	mode       uiMode
	format     string
	quiet      bool
	transcript bool
	groups     int
}

func (p progressView) enabled() bool {
	if p.quiet || p.groups == 0 {
		return false
	}
	switch p.mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	if p.format != "pretty" || p.transcript {
		return false
	}
	if os.Getenv("CI") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(os.Stdout)
}
