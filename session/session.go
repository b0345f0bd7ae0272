// Package session coordinates hotkey toggles, audio frames, and silence
// detection into complete recording sessions.
package session

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/voxtype/voxtype/capture"
	"github.com/voxtype/voxtype/inject"
	"github.com/voxtype/voxtype/snd"
	"github.com/voxtype/voxtype/stt"
	"github.com/voxtype/voxtype/txt"
	"github.com/voxtype/voxtype/vad"
)

// State is the controller's lifecycle phase.
type State int

const (
	Idle State = iota
	Recording
	Finalizing
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Finalizing:
		return "finalizing"
	default:
		return "idle"
	}
}

// Command is a logical control event. The hotkey dispatcher sends Toggle;
// Start and Stop exist so callers with explicit intent get the idempotent
// behavior: Start while recording and Stop while idle are no-ops.
type Command int

const (
	Toggle Command = iota
	Start
	Stop
)

func (c Command) String() string {
	switch c {
	case Start:
		return "start"
	case Stop:
		return "stop"
	default:
		return "toggle"
	}
}

// Config holds the session parameters.
type Config struct {
	SampleRate     int
	SilenceTimeout time.Duration
	// MinDuration is the shortest recording worth transcribing; anything
	// under it is discarded without touching the provider.
	MinDuration time.Duration
}

// Controller is the single owner of session state. All transitions happen
// on one goroutine inside Run; toggles and frames are channel-delivered so
// a stop command and a frame append can never interleave.
//
// One controller instance exists per process: it is created at startup and
// runs until the context is canceled.
type Controller struct {
	cfg         Config
	source      capture.Source
	monitor     *vad.Monitor
	transcriber stt.Transcriber
	injector    inject.Injector
	hint        string
	logger      *log.Logger

	commands chan Command

	// OnState, when set, is called from the controller goroutine on every
	// state change. Used for status display only.
	OnState func(State)
}

// New creates the controller. hint is the vocabulary hint passed with
// every transcription request; it may be empty.
func New(cfg Config, source capture.Source, monitor *vad.Monitor, transcriber stt.Transcriber, injector inject.Injector, hint string, logger *log.Logger) *Controller {
	return &Controller{
		cfg:         cfg,
		source:      source,
		monitor:     monitor,
		transcriber: transcriber,
		injector:    injector,
		hint:        hint,
		logger:      logger,
		// One slot of buffer holds a press that lands while the loop is
		// between selects (opening the device, processing a frame), so a
		// quick stop press is never lost.
		commands: make(chan Command, 1),
	}
}

// Commands is the control channel. One pending command is buffered so a
// press that lands while the loop is busy still takes effect. Senders
// must not block on it: a send that cannot complete means a press is
// already pending and the new one should be dropped. Presses that queue
// while a session is finalizing are drained and dropped, which is the
// documented policy for presses that arrive mid-finalization.
func (c *Controller) Commands() chan<- Command {
	return c.commands
}

// Run processes commands until the context is canceled. It never returns
// mid-session: cancellation during a recording discards the buffer.
func (c *Controller) Run(ctx context.Context) error {
	c.setState(Idle)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-c.commands:
			if cmd == Stop {
				c.logger.Debug("stop while idle, ignoring")
				continue
			}
			c.record(ctx)
		}
	}
}

// record runs one full session: capture until silence timeout, manual
// stop, device failure, or cancellation, then finalize.
func (c *Controller) record(ctx context.Context) {
	id := uuid.New().String()[:8]
	logger := c.logger.With("session", id)

	frames, err := c.source.Start(ctx)
	if err != nil {
		logger.Error("cannot open capture device", "error", err)
		return
	}

	c.setState(Recording)
	logger.Info("recording started", "silence_timeout", c.cfg.SilenceTimeout)

	var (
		buffer     []capture.Frame
		duration   time.Duration
		silence    time.Duration
		speechSeen bool
		aborted    bool
	)

loop:
	for {
		select {
		case <-ctx.Done():
			aborted = true
			break loop

		case cmd := <-c.commands:
			if cmd == Start {
				logger.Debug("start while recording, ignoring")
				continue
			}
			logger.Info("manual stop")
			break loop

		case frame, ok := <-frames:
			if !ok {
				if err := c.source.Err(); err != nil {
					logger.Error("capture device failed, discarding session", "error", err)
				} else {
					logger.Warn("capture stream ended unexpectedly, discarding session")
				}
				aborted = true
				break loop
			}

			buffer = append(buffer, frame)
			duration += frame.Duration

			switch c.monitor.Classify(frame.Samples) {
			case vad.Speech:
				silence = 0
				speechSeen = true
			case vad.Silence:
				silence += frame.Duration
			}

			// The frame that crossed the threshold stays in the buffer;
			// nothing after it is pulled. At least one frame has always
			// been classified here, so a zero timeout cannot stop an
			// unstarted recording.
			if silence >= c.cfg.SilenceTimeout {
				logger.Info("silence timeout reached", "silence", silence)
				break loop
			}
		}
	}

	_ = c.source.Stop()

	if aborted {
		c.drainCommands(logger)
		c.setState(Idle)
		return
	}

	c.setState(Finalizing)
	c.finalize(ctx, logger, buffer, duration, speechSeen)
	c.drainCommands(logger)
	c.setState(Idle)
}

// drainCommands drops presses that queued while the session was being
// torn down or the transcription request was in flight.
func (c *Controller) drainCommands(logger *log.Logger) {
	for {
		select {
		case cmd := <-c.commands:
			logger.Debug("press during finalize dropped", "command", cmd)
		default:
			return
		}
	}
}

// finalize hands the completed buffer to the transcription boundary and
// delivers the result. The buffer is moved here; the session keeps nothing.
func (c *Controller) finalize(ctx context.Context, logger *log.Logger, buffer []capture.Frame, duration time.Duration, speechSeen bool) {
	if duration < c.cfg.MinDuration || !speechSeen {
		logger.Info("recording too short or silent, discarding",
			"duration", duration.Round(time.Millisecond),
			"speech", speechSeen,
			"frames", len(buffer))
		return
	}

	total := 0
	for _, f := range buffer {
		total += len(f.Samples)
	}
	samples := make([]int16, 0, total)
	for _, f := range buffer {
		samples = append(samples, f.Samples...)
	}
	clip := snd.Clip{SampleRate: c.cfg.SampleRate, Samples: samples}

	logger.Info("transcribing",
		"duration", clip.Duration().Round(time.Millisecond),
		"frames", len(buffer))

	result, err := c.transcriber.Transcribe(ctx, clip, c.hint)
	if err != nil {
		logger.Error("transcription failed", "error", err)
		return
	}

	text := txt.CleanTranscript(result.Text)
	if text == "" {
		logger.Info("no speech recognized")
		return
	}

	if err := c.injector.Inject(text); err != nil {
		logger.Error("text delivery failed", "error", err)
		return
	}
	logger.Info("transcript delivered", "provider", result.Provider, "chars", len(text))
}

func (c *Controller) setState(s State) {
	if c.OnState != nil {
		c.OnState(s)
	}
}
