package flags

import (
	"strings"

	"github.com/urfave/cli"
)

func eachName(longName string, fn func(string)) {
	parts := strings.Split(longName, ",")
	for _, name := range parts {
		name = strings.Trim(name, " ")
		fn(name)
	}
}

// hasName checks whether any of the flag names (long or short) is one of
// names.
func hasName(f cli.Flag, names []string) bool {
	var found bool
	eachName(f.GetName(), func(name string) {
		for _, n := range names {
			found = found || n == name
		}
	})
	return found
}

// MarkRequired returns a copy of flagSet with flags having any of the given
// names (long or short) marked as required. Flag types that can't be
// required are left as is.
func MarkRequired(flagSet []cli.Flag, names ...string) []cli.Flag {
	updated := make([]cli.Flag, 0, len(flagSet))
	for _, flag := range flagSet {
		if hasName(flag, names) {
			switch f := flag.(type) {
			case AddressFlag:
				f.Required = true
				flag = f
			case cli.StringFlag:
				f.Required = true
				flag = f
			case cli.StringSliceFlag:
				f.Required = true
				flag = f
			case cli.Uint64Flag:
				f.Required = true
				flag = f
			case cli.UintFlag:
				f.Required = true
				flag = f
			case cli.BoolFlag:
				f.Required = true
				flag = f
			}
		}
		updated = append(updated, flag)
	}
	return updated
}
