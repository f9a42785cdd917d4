package report

import (
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
)

const barTemplate = `{{string . "stage"}} {{bar . }} {{percent . }}`

// Console draws a progress bar and prints notices, warnings and errors
// in colour. Call Close when the run is over.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	bar *pb.ProgressBar

	notice  *color.Color
	warning *color.Color
	failure *color.Color
}

// NewConsole starts a progress bar writing to w.
func NewConsole(w io.Writer) *Console {
	bar := pb.New(100).
		SetTemplateString(barTemplate).
		SetWriter(w).
		SetMaxWidth(100)
	bar.Set("stage", "")
	bar.Start()

	return &Console{
		w:       w,
		bar:     bar,
		notice:  color.New(color.FgCyan),
		warning: color.New(color.FgYellow, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
	}
}

func (c *Console) Progress(label string, f float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bar.Set("stage", label)
	c.bar.SetCurrent(int64(f * 100))
}

func (c *Console) Notice(title, detail string) {
	c.print(c.notice, title, detail)
}

func (c *Console) Warning(title, detail string) {
	c.print(c.warning, title, detail)
}

func (c *Console) Error(title, detail string, _ time.Duration) {
	c.print(c.failure, title, detail)
}

func (c *Console) print(col *color.Color, title, detail string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	col.Fprintf(c.w, "\n%s: %s\n", title, detail)
}

// Close finishes the progress bar.
func (c *Console) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bar.Finish()
}
