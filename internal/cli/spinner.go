package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// withSpinner animates message on w while fn runs and clears the line
// afterwards. The animation also stops when ctx ends; fn is expected to
// observe ctx itself.
func withSpinner(ctx context.Context, w io.Writer, message string, fn func() error) error {
	stop := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				fmt.Fprintf(w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(message))
			}
		}
	}()

	err := fn()
	close(stop)
	<-stopped
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", len(message)+4))
	return err
}
