package main

import (
	"fmt"
	"strings"
)

type runFlags struct {
	ascii    *bool
	echo     *bool
	stats    *bool
	logLevel string
	manifest string
}

func boolFlag(v bool) *bool {
	return &v
}

// parseRunFlags separates long flags from positional arguments. Negative
// numbers are positional so they can be passed as inputs.
func parseRunFlags(args []string) (runFlags, []string, error) {
	var flags runFlags
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			remaining = append(remaining, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "--") {
			remaining = append(remaining, arg)
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		switch name {
		case "ascii":
			flags.ascii = boolFlag(true)
		case "echo":
			flags.echo = boolFlag(true)
		case "no-echo":
			flags.echo = boolFlag(false)
		case "stats":
			flags.stats = boolFlag(true)
		case "log-level", "manifest":
			if !hasValue {
				if i+1 >= len(args) {
					return flags, nil, fmt.Errorf("--%s expects a value", name)
				}
				value = args[i+1]
				i++
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return flags, nil, fmt.Errorf("--%s expects a value", name)
			}
			if name == "manifest" {
				flags.manifest = value
			} else {
				flags.logLevel = strings.ToLower(value)
			}
			continue
		default:
			return flags, nil, fmt.Errorf("unknown flag --%s", name)
		}
		if hasValue {
			return flags, nil, fmt.Errorf("--%s does not take a value", name)
		}
	}
	return flags, remaining, nil
}
