package exittest

import "fmt"

// Classify decodes a raw process exit code into an ExitCondition. Windows
// has no signal termination; unhandled exceptions surface as abnormal exit
// codes, so every raw status is an exit code.
func Classify(raw uint32) ExitCondition {
	return ExitCode(int(raw))
}

// Windows exit codes are full 32-bit values; no masking applies.
func maskExitCode(code int) int {
	return code
}

// There is no Signal constructor on Windows: signal termination cannot be
// reported distinctly from generic failure, so it cannot be expected either.
func parseSignalCondition(s string) (ExitCondition, error) {
	return ExitCondition{}, fmt.Errorf("signal conditions are not supported on windows")
}
