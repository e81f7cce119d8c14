package models

import (
	"fmt"
	"net"
	"strconv"
)

// NoTitle is recorded when a page has no <title> or an empty one
const NoTitle = "None"

// ProbeUnit is a single host/port pair to be checked
type ProbeUnit struct {
	Host string
	Port int
}

// Address returns the unit as a dialable host:port string
func (u ProbeUnit) Address() string {
	return net.JoinHostPort(u.Host, strconv.Itoa(u.Port))
}

// ProbeResult represents a web service that answered a probe
type ProbeResult struct {
	Host       string
	Port       int
	StatusCode int
	Title      string
}

// Outcome is what a probe produced: either a result (Found) or nothing.
// Err records why nothing was found and is only meant for diagnostics.
type Outcome struct {
	Unit   ProbeUnit
	Result ProbeResult
	Found  bool
	Err    error
}

// Hit builds a successful outcome
func Hit(result ProbeResult) Outcome {
	return Outcome{
		Unit:   ProbeUnit{Host: result.Host, Port: result.Port},
		Result: result,
		Found:  true,
	}
}

// Absent builds an outcome for a probe that produced no result
func Absent(unit ProbeUnit, err error) Outcome {
	return Outcome{Unit: unit, Err: err}
}

// ConfigurationError is returned for settings that make a scan impossible
type ConfigurationError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
