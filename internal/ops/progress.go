package ops

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

type ProgressBar struct {
	Requests *progressbar.ProgressBar
}

// NewProgress renders request progress to stderr. A disabled bar swallows updates
func NewProgress(max int64, visible bool) *ProgressBar {
	var w io.Writer = os.Stderr
	if !visible {
		w = ioutil.Discard
	}
	requestb := progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(10),
		progressbar.OptionShowIts(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionSpinnerType(14),
	)
	return &ProgressBar{
		Requests: requestb,
	}
}

func (b *ProgressBar) Incr(n int64) {
	b.Requests.Add64(n)
}

func (b *ProgressBar) Finish() {
	b.Requests.Finish()
}
