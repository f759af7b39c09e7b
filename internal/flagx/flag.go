// Package flagx picks the flags one component cares about out of a shared
// command line, so several flag sets can read the same os.Args.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns the arguments of args that belong to the allowed flags,
// with their values. Both "-f value" and "-f=value" forms are kept. A value is
// only taken from the next argument when it does not start with a dash.
func FilterArgs(args []string, allowed []string) []string {
	known := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		known[f] = true
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if known[name] {
				filtered = append(filtered, arg)
			}
			continue
		}
		if !known[arg] {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			filtered = append(filtered, args[i])
		}
	}
	return filtered
}

// ConfigPath returns the JSON config file named with -c or -config in args,
// or "" when there is none. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))
	return path
}
