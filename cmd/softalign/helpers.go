package main

import (
	"time"

	"github.com/spf13/pflag"
)

const timeRounding = 10 * time.Millisecond

// intOrConfig prefers an explicitly set flag over the configured value, and
// the flag default when neither was given.
func intOrConfig(flags *pflag.FlagSet, name string, flagValue, configValue int) int {
	if flags.Changed(name) {
		return flagValue
	}
	if configValue != 0 {
		return configValue
	}
	return flagValue
}

func stringOrConfig(flags *pflag.FlagSet, name string, flagValue, configValue string) string {
	if flags.Changed(name) {
		return flagValue
	}
	if configValue != "" {
		return configValue
	}
	return flagValue
}
