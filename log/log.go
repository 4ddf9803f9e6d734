package log

import (
	"os"

	hclog "github.com/hashicorp/go-hclog"
)

var L hclog.Logger

func init() {
	L = hclog.New(&hclog.LoggerOptions{
		Name: "sos",
	})
	L.SetLevel(hclog.Info)

	if str := os.Getenv("TRACE"); str != "" {
		L.SetLevel(hclog.Trace)
	}
}

// SetLevel parses a level name ("trace", "debug", "info", ...). Unknown
// names leave the level untouched and return false.
func SetLevel(name string) bool {
	lvl := hclog.LevelFromString(name)
	if lvl == hclog.NoLevel {
		return false
	}

	L.SetLevel(lvl)
	return true
}
