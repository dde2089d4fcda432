package cli

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// NewProgressBar returns a bar sized for total steps, or nil when there is nothing to count.
func NewProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	if total <= 0 {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// ProgressFunc adapts a bar to the done-count callbacks used by imports and exports.
// A nil bar yields a no-op.
func ProgressFunc(bar *progressbar.ProgressBar) func(done int) {
	if bar == nil {
		return func(int) {}
	}
	return func(done int) {
		_ = bar.Set(done)
	}
}
