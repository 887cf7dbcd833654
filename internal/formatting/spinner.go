package formatting

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spin shows a spinner with the given message on w while fn runs. Nothing
// is drawn unless w is a terminal.
func Spin[T any](w io.Writer, message string, fn func() (T, error)) (T, error) {
	if !IsTerminal(w) {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()

	return fn()
}
