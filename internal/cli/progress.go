package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/topdeps/pkg/dependents"
	errs "github.com/matzehuels/topdeps/pkg/errors"
	"github.com/matzehuels/topdeps/pkg/pipeline"
)

// Progress display modes.
const (
	progressAuto   = "auto"
	progressAlways = "always"
	progressNever  = "never"
)

const progressBarWidth = 40

// showProgress decides whether the interactive display is used for mode.
// Auto enables it only when stderr is a terminal.
func showProgress(mode string, f *os.File) (bool, error) {
	switch strings.ToLower(mode) {
	case progressAlways:
		return true, nil
	case progressNever:
		return false, nil
	case progressAuto, "":
		fd := f.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd), nil
	}
	return false, errs.New(errs.ErrCodeInvalidInput, "unknown progress mode %q: use %s, %s or %s", mode, progressAuto, progressAlways, progressNever)
}

// =============================================================================
// Crawl Model - progress bar for pages, spinner for descriptions
// =============================================================================

type eventMsg pipeline.Event

type doneMsg struct{}

// logLineMsg carries a log line to print above the display.
type logLineMsg string

type crawlModel struct {
	bar  progress.Model
	spin spinner.Model

	// expected is the number of rows the crawl can reach:
	// min(total known, max pages * page size).
	expected int
	rows     int
	page     int
	maxPages int

	describing int
	done       bool
}

func newCrawlModel(maxPages int) crawlModel {
	return crawlModel{
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth)),
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleIconSpinner)),
		maxPages: maxPages,
		expected: maxPages * dependents.PageSize,
	}
}

func (m crawlModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m crawlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.apply(pipeline.Event(msg))
		return m, nil

	case logLineMsg:
		return m, tea.Println(string(msg))

	case doneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *crawlModel) apply(e pipeline.Event) {
	if e.MaxPages > 0 {
		m.maxPages = e.MaxPages
	}
	switch e.Stage {
	case pipeline.StageProbe:
		limit := m.maxPages * dependents.PageSize
		m.expected = limit
		if e.Total > 0 && e.Total < limit {
			m.expected = e.Total
		}
	case pipeline.StagePage:
		m.page = e.Page.Page
		m.rows = e.Page.Total
	case pipeline.StageEnrich:
		m.describing = e.Total
	}
}

// percent is the bar fill, clamped to [0, 1].
func (m crawlModel) percent() float64 {
	if m.expected <= 0 {
		return 0
	}
	p := float64(m.rows) / float64(m.expected)
	if p > 1 {
		return 1
	}
	return p
}

func (m crawlModel) View() string {
	if m.done {
		return ""
	}
	if m.describing > 0 {
		return fmt.Sprintf("%s fetching descriptions for %d dependents\n", m.spin.View(), m.describing)
	}
	return fmt.Sprintf("%s page %d/%d %s %s\n",
		m.spin.View(), m.page, m.maxPages,
		m.bar.ViewAs(m.percent()),
		StyleDim.Render(fmt.Sprintf("%d/%d rows", m.rows, m.expected)))
}

// =============================================================================
// Display - runs the model while the pipeline reports events
// =============================================================================

// crawlDisplay drives a crawlModel in its own goroutine.
type crawlDisplay struct {
	prog *tea.Program
	done chan struct{}
}

func startCrawlDisplay(ctx context.Context, w io.Writer, maxPages int) *crawlDisplay {
	prog := tea.NewProgram(newCrawlModel(maxPages),
		tea.WithContext(ctx),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	d := &crawlDisplay{prog: prog, done: make(chan struct{})}
	go func() {
		defer close(d.done)
		_, _ = prog.Run()
	}()
	return d
}

// Listen forwards pipeline events to the display.
func (d *crawlDisplay) Listen(e pipeline.Event) {
	d.prog.Send(eventMsg(e))
}

// LogWriter returns a writer whose lines are printed above the display while
// it runs. Writes after Stop are dropped.
func (d *crawlDisplay) LogWriter() io.Writer {
	return displayWriter{d.prog}
}

// Stop clears the display and waits for it to exit.
func (d *crawlDisplay) Stop() {
	d.prog.Send(doneMsg{})
	<-d.done
}

type displayWriter struct{ prog *tea.Program }

func (w displayWriter) Write(p []byte) (int, error) {
	w.prog.Send(logLineMsg(strings.TrimRight(string(p), "\n")))
	return len(p), nil
}

// logListener reports pipeline events as debug log lines, used when no
// terminal is attached.
func logListener(logger *log.Logger) pipeline.Listener {
	return func(e pipeline.Event) {
		switch e.Stage {
		case pipeline.StageProbe:
			logger.Debug("probed listing", "total", e.Total)
		case pipeline.StagePage:
			if e.Page.Err != nil {
				return
			}
			logger.Debug("fetched page", "page", e.Page.Page, "max", e.MaxPages, "rows", e.Page.Records, "total", e.Page.Total)
		case pipeline.StageEnrich:
			logger.Debug("fetching descriptions", "count", e.Total)
		}
	}
}
