package main

import "strings"

// longForms maps the two-letter shorthands pflag cannot register to their
// long flags.
var longForms = map[string]string{
	"-pb": "--pybullet",
	"-bd": "--begin_down",
}

// normalizeArgs rewrites two-letter shorthands, including the -xx=value
// form, and leaves everything after "--" alone.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, a := range args {
		if a == "--" {
			return append(out, args[i:]...)
		}
		name, value, hasValue := strings.Cut(a, "=")
		if long, ok := longForms[name]; ok {
			if hasValue {
				a = long + "=" + value
			} else {
				a = long
			}
		}
		out = append(out, a)
	}
	return out
}
