// Package flagx contains helpers for picking known flags out of os.Args
// without tripping over flags that belong to other packages.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags named in allowed, plus their values.
// Both "-f value" and "--flag=value" spellings are recognized. The result
// is never nil, so it can be handed straight to flag.FlagSet.Parse.
func FilterArgs(args []string, allowed []string) []string {
	known := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		known[name] = struct{}{}
	}

	kept := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(arg, "-") {
			if _, ok := known[name]; ok {
				kept = append(kept, arg)
			}
			continue
		}

		if _, ok := known[arg]; ok {
			kept = append(kept, arg)
			// A following argument that is not itself a flag is this
			// flag's value.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				kept = append(kept, args[i+1])
				i++
			}
		}
	}
	return kept
}

// JsonConfigFlags returns the config file path given via -c or -config,
// or "" when neither flag is present. Unrelated flags are left for their
// owners to parse.
func JsonConfigFlags() string {
	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	var path string
	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(args)

	return path
}
