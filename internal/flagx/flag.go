// Package flagx lets several flag sets share one command line: each loader
// picks out the flags it owns and parses only those.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the flags of args named in allowed, with their values,
// in their original order. Everything else is dropped.
//
// Both "-f value" and "-f=value" are understood. Flags in boolFlags are kept
// too but never take the following token as their value, so "-k version"
// keeps only "-k".
func FilterArgs(args []string, allowed []string, boolFlags ...string) []string {
	valued := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		valued[f] = struct{}{}
	}
	bools := make(map[string]struct{}, len(boolFlags))
	for _, f := range boolFlags {
		bools[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		_, isBool := bools[name]
		_, isValued := valued[name]
		if !isBool && !isValued {
			continue
		}

		filtered = append(filtered, arg)
		if hasValue || isBool {
			continue
		}

		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// JsonConfigFlags returns the value of -c or -config from os.Args, or "".
// When both are given the last one wins.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}
