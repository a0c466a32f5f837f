package app

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// progress reports per-row advancement of a run.
type progress interface {
	Step()
	Done()
}

// newProgress draws a bar on an interactive stderr and otherwise logs a
// progress line at most every few seconds.
func newProgress(total int) progress {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return &barProgress{bar: progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Geocoding"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)}
	}
	return &logProgress{total: total, every: rate.Sometimes{First: 1, Interval: 5 * time.Second}}
}

type barProgress struct{ bar *progressbar.ProgressBar }

func (p *barProgress) Step() { _ = p.bar.Add(1) }
func (p *barProgress) Done() { _ = p.bar.Finish() }

type logProgress struct {
	total, n int
	every    rate.Sometimes
}

func (p *logProgress) Step() {
	p.n++
	p.every.Do(func() {
		log.Info().Int("done", p.n).Int("total", p.total).Msg("geocoding progress")
	})
}

func (p *logProgress) Done() {}
