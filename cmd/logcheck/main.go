// Command logcheck exercises the logging service from the command line: it
// writes log lines and audit records and reports the paths the process sees.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
