package build

import "fmt"

// Critical should be called if a sanity check has failed, indicating
// developer error. Critical is called with a short description of the
// problem.
func Critical(v ...interface{}) {
	critical(v...)
}

// Severe is the same as Critical, but used to flag invariant violations
// that are less severe than Critical: in a 'standard' release the program
// continues, while in a 'debug' or 'testing' release it still panics.
func Severe(v ...interface{}) {
	critical(v...)
}

func critical(v ...interface{}) {
	msg := "Critical error: " + fmt.Sprintln(v...)
	if DEBUG || Release == "testing" || Release == "dev" {
		panic(msg)
	}
}

// JoinErrors combines multiple errors into a single one, separated by sep.
// Nil errors are skipped. If every error is nil, JoinErrors returns nil.
func JoinErrors(errs []error, sep string) error {
	var s string
	for _, err := range errs {
		if err == nil {
			continue
		}
		if s != "" {
			s += sep
		}
		s += err.Error()
	}
	if s == "" {
		return nil
	}
	return joinedError(s)
}

type joinedError string

func (e joinedError) Error() string { return string(e) }
