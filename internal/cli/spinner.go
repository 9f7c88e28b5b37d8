package cli

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
)

// startSpinner returns a running spinner plus a cleanup that stops it and
// prints the FinalMSG set by the command.
func startSpinner(message string) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	// Continue uncolored if the terminal refuses.
	_ = s.Color("cyan")

	s.Start()

	cleanup := func() {
		s.Stop()
		if s.FinalMSG != "" {
			fmt.Println(s.FinalMSG)
		}
	}
	return s, cleanup
}

// progressSuffix feeds envelope progress callbacks into the spinner text.
func progressSuffix(s *spinner.Spinner, verb string) func(float64) {
	return func(f float64) {
		s.Suffix = fmt.Sprintf(" %s... %3.0f%%", verb, f*100)
	}
}
