// Package inject delivers finished transcripts to the focused application.
package inject

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
)

// Injector receives the final text of a session. The session controller
// guarantees it is called at most once per recording, with non-empty text.
type Injector interface {
	Inject(text string) error
}

// ClipboardInjector copies the transcript to the system clipboard and then
// optionally runs a paste command (for example "xdotool key ctrl+v") so
// the text lands in the focused window without a manual paste.
type ClipboardInjector struct {
	pasteCommand string
	pasteDelay   time.Duration
	logger       *log.Logger
}

// NewClipboardInjector creates the injector. An empty pasteCommand leaves
// the text on the clipboard for the user to paste.
func NewClipboardInjector(pasteCommand string, logger *log.Logger) *ClipboardInjector {
	return &ClipboardInjector{
		pasteCommand: pasteCommand,
		pasteDelay:   100 * time.Millisecond,
		logger:       logger,
	}
}

func (c *ClipboardInjector) Inject(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	c.logger.Debug("copied to clipboard", "chars", len(text))

	if c.pasteCommand == "" {
		c.logger.Info("transcript on clipboard, paste to insert")
		return nil
	}

	// Give the clipboard owner a moment before synthesizing the paste.
	time.Sleep(c.pasteDelay)

	parts := strings.Fields(c.pasteCommand)
	cmd := exec.Command(parts[0], parts[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("paste command %q: %w (%s)", c.pasteCommand, err, strings.TrimSpace(string(out)))
	}
	c.logger.Debug("paste command completed", "command", parts[0])
	return nil
}
