package cli

import (
	"io"
	"os"
	"time"

	"github.com/law-makers/contractors/internal/app"
	"github.com/schollz/progressbar/v3"
)

// newProgress returns a bar on stderr, or a silent one for --quiet and --json.
// A negative total renders a spinner with a running count.
func newProgress(a *app.Application, total int, description string) *progressbar.ProgressBar {
	var w io.Writer = os.Stderr
	if a.Config.Quiet || a.Config.JSONLog {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("sites"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
