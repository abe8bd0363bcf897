//go:build js && wasm
// +build js,wasm

package debug

import (
	"strings"
	"syscall/js"

	"github.com/recera/graphpanel/pkg/reactive"
	"github.com/recera/graphpanel/pkg/scheduler"
)

// EnableLogging enables debug logging for scheduler and reactive packages
func EnableLogging() {
	logFn := func(args ...interface{}) {
		js.Global().Get("console").Call("log", args...)
	}

	scheduler.SetDebugLog(logFn)
	reactive.SetDebugLog(logFn)
}

// Console is an io.Writer that sends each write to console.log, so zerolog
// can log from the browser
type Console struct{}

func (Console) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
