package engine

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Spinner frames using braille characters
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// maxShownErrors bounds how many validation errors are printed per pass.
const maxShownErrors = 5

// Flusher is an optional interface for writers that support flushing.
type Flusher interface {
	Sync() error
}

// Display renders pipeline progress: a command header, a spinner while the
// engine or the tools are busy, validation verdicts and a final box.
type Display struct {
	out      io.Writer
	mu       sync.Mutex
	spinMu   sync.Mutex // Separate mutex for spinner to avoid deadlock
	spinning bool
	spinStop chan struct{}
	spinDone chan struct{}
	spinMsg  string

	state       SpinnerState
	startTime   time.Time
	phaseStart  time.Time
	totalTokens int
}

// flush attempts to flush the output if it supports it.
func (d *Display) flush() {
	if f, ok := d.out.(Flusher); ok {
		f.Sync()
	}
}

// NewDisplay creates a new display writer.
func NewDisplay(out io.Writer) *Display {
	now := time.Now()
	return &Display{
		out:        out,
		startTime:  now,
		phaseStart: now,
	}
}

// StartSpinner begins the loading spinner with a message. If the spinner
// is already running only the message changes.
func (d *Display) StartSpinner(msg string) {
	d.spinMu.Lock()
	if d.spinning {
		d.spinMsg = msg
		d.spinMu.Unlock()
		return
	}
	d.spinning = true
	d.spinMsg = msg
	d.spinStop = make(chan struct{})
	d.spinDone = make(chan struct{})
	stop, done := d.spinStop, d.spinDone
	d.spinMu.Unlock()

	go func() {
		defer close(done)
		frame := 0
		first := true
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				if !first {
					// Move up, clear line, stay there for next output
					fmt.Fprintf(d.out, "\033[1A\r\033[K")
					d.flush()
				}
				return
			case <-ticker.C:
				d.spinMu.Lock()
				msg := d.spinMsg
				d.spinMu.Unlock()
				elapsed := formatElapsed(time.Since(d.phaseStart))
				if first {
					fmt.Fprintf(d.out, "   %s %s (%s)\n", spinnerFrames[frame], msg, elapsed)
					first = false
				} else {
					fmt.Fprintf(d.out, "\033[1A\r\033[K   %s %s (%s)\n", spinnerFrames[frame], msg, elapsed)
				}
				d.flush()
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()
}

// StopSpinner stops the loading spinner.
func (d *Display) StopSpinner() {
	d.spinMu.Lock()
	if !d.spinning {
		d.spinMu.Unlock()
		return
	}
	d.spinning = false
	close(d.spinStop)
	done := d.spinDone
	d.spinMu.Unlock()
	<-done
}

// ShowCommandHeader prints the boxed header at the top of a command.
func (d *Display) ShowCommandHeader(title, target, engineName string) {
	d.startTime = time.Now()
	body := fmt.Sprintf("%s %s  %s", StyleCommandIcon.String(), StyleTitle.Render(title), target)
	if engineName != "" {
		body += "\n" + StyleMuted.Render("engine: "+engineName)
	}
	fmt.Fprintln(d.out, HeaderBox().Render(body))
}

// ShowEvent displays a normalized engine event.
func (d *Display) ShowEvent(e *Event) {
	if e == nil {
		return
	}

	d.StopSpinner()
	d.mu.Lock()

	restart := false
	switch e.Type {
	case EventInit:
		if e.Data.Model != "" {
			fmt.Fprintf(d.out, "   %s\n", StyleMuted.Render("model: "+e.Data.Model))
		}
		restart = true

	case EventText:
		restart = true

	case EventResult:
		if e.Data.Tokens > 0 {
			d.totalTokens += e.Data.Tokens
			fmt.Fprintf(d.out, "   %s\n", StyleMuted.Render(formatTokens(e.Data.Tokens)+" tokens"))
		}

	case EventError:
		fmt.Fprintf(d.out, "   %s %s\n", StyleError.Render("[!!]"), e.Data.Message)
	}

	busy := d.state == StateGenerating || d.state == StateValidating
	d.mu.Unlock()

	d.spinMu.Lock()
	msg := d.spinMsg
	d.spinMu.Unlock()

	if restart && msg != "" && busy {
		d.StartSpinner(msg)
	}
}

// PhaseStarted reports that the pipeline entered phase. iteration counts
// repair attempts so far.
func (d *Display) PhaseStarted(phase string, iteration, maxIterations int) {
	d.StopSpinner()

	to, msg := StateGenerating, phase+"..."
	switch phase {
	case "generate":
		msg = "generating lesson..."
	case "repair":
		msg = fmt.Sprintf("repairing (attempt %d/%d)...", iteration+1, maxIterations)
	case "validate":
		to, msg = StateValidating, "validating..."
	case "commit":
		to = StateCompletion
	}

	d.mu.Lock()
	if phase == "generate" {
		// A new run starts from scratch.
		d.state = StateIdle
	}
	if err := Transition(d.state, to); err != nil {
		// Out-of-order report: keep the current state and stay quiet.
		d.mu.Unlock()
		return
	}
	d.state = to
	d.phaseStart = time.Now()
	d.mu.Unlock()

	if to != StateCompletion {
		d.StartSpinner(msg)
	}
}

// Validated prints the verdict of one validation pass.
func (d *Display) Validated(valid bool, errs []string) {
	d.StopSpinner()
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := time.Since(d.phaseStart).Round(time.Millisecond)
	if valid {
		fmt.Fprintf(d.out, "   %s validation passed %s\n", StyleSuccess.Render("[ok]"), StyleMuted.Render(elapsed.String()))
		return
	}

	fmt.Fprintf(d.out, "   %s validation failed (%d errors) %s\n",
		StyleWarning.Render("[!!]"), len(errs), StyleMuted.Render(elapsed.String()))
	for i, e := range errs {
		if i == maxShownErrors {
			fmt.Fprintf(d.out, "      %s\n", StyleMuted.Render(fmt.Sprintf("... %d more", len(errs)-maxShownErrors)))
			break
		}
		fmt.Fprintf(d.out, "      %s\n", truncate(firstLine(e), 100))
	}
}

// ShowCommitted prints the success box for a written lesson.
func (d *Display) ShowCommitted(path string, iterations int) {
	d.finish(StateCompletion)
	body := fmt.Sprintf("%s Lesson written\n%s\n%s",
		StyleSuccess.Render("[ok]"),
		path,
		StyleMuted.Render(d.summary(iterations)))
	fmt.Fprintln(d.out, SuccessBox().Render(body))
}

// ShowDryRun prints the accepted candidate instead of writing it.
func (d *Display) ShowDryRun(filename, code string, iterations int) {
	d.finish(StateCompletion)
	body := fmt.Sprintf("%s Dry run: %s not written\n%s",
		StyleInfo.Render("[--]"), filename, StyleMuted.Render(d.summary(iterations)))
	fmt.Fprintln(d.out, HeaderBox().Render(body))
	fmt.Fprintln(d.out, code)
}

// ShowFailed prints the failure box with the last error list.
func (d *Display) ShowFailed(status string, errs []string, iterations int) {
	d.finish(StateError)
	lines := []string{
		fmt.Sprintf("%s Lesson %s", StyleError.Render("[!!]"), status),
	}
	lines = append(lines, errs...)
	lines = append(lines, StyleMuted.Render(d.summary(iterations)))
	fmt.Fprintln(d.out, ErrorBox().Render(strings.Join(lines, "\n")))
}

// ShowInfo displays an info message.
func (d *Display) ShowInfo(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}

// ShowRetry displays engine retry information.
func (d *Display) ShowRetry(attempt, max int, delay time.Duration) {
	d.StopSpinner()
	fmt.Fprintf(d.out, "   %s\n", StyleWarning.Render(fmt.Sprintf("... retrying in %s (attempt %d/%d)", delay.Round(time.Second), attempt, max)))
}

func (d *Display) finish(to SpinnerState) {
	d.StopSpinner()
	d.mu.Lock()
	if Transition(d.state, to) == nil {
		d.state = to
	}
	d.mu.Unlock()
}

func (d *Display) summary(iterations int) string {
	s := fmt.Sprintf("repairs: %d | time: %s", iterations, time.Since(d.startTime).Round(time.Second))
	if d.totalTokens > 0 {
		s += " | tokens: " + formatTokens(d.totalTokens)
	}
	return s
}

// formatElapsed formats duration with fixed width (always 6 chars like " 1.04s")
func formatElapsed(d time.Duration) string {
	secs := d.Seconds()
	if secs < 10 {
		return fmt.Sprintf("%5.2fs", secs)
	} else if secs < 100 {
		return fmt.Sprintf("%5.1fs", secs)
	}
	return fmt.Sprintf("%5.0fs", secs)
}

func formatTokens(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
