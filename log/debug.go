package log

import (
	"os"

	hclog "github.com/hashicorp/go-hclog"
)

func EnableDebug() {
	if str := os.Getenv("TRACE"); str != "" {
		L.SetLevel(hclog.Trace)
	}
}

// Silence turns logging off unless TRACE is set. Tests call it so the
// kernel's event stream doesn't drown the test output.
func Silence() {
	L.SetLevel(hclog.Off)
	EnableDebug()
}
