package util

import (
	"fmt"
	"io"
	"os"
)

var (
	errOut   io.Writer = os.Stderr
	exitFunc           = os.Exit
)

// CheckError stops the process on setup failures that happen before any
// command runs, for example an unreadable configuration file. The message
// uses the same "Error: " prefix as command failures.
func CheckError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(errOut, "Error: %s\n", err)
	exitFunc(1)
}
