package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	log "github.com/sirupsen/logrus"

	"github.com/cognicore/clichart/pkg/clichart"
	"github.com/cognicore/clichart/pkg/clichart/config"
	"github.com/cognicore/clichart/pkg/clichart/data"
	"github.com/cognicore/clichart/pkg/clichart/internalerr"
	"github.com/cognicore/clichart/pkg/clichart/store"
)

// ErrInactive ends a session that received no command within its timeout.
var ErrInactive = errors.New("no activity within session timeout")

var errQuit = errors.New("quit")

const responseOK = "OK"

// ChartGenerator builds and saves a chart from the session's options.
type ChartGenerator interface {
	Generate(ctx context.Context, opts *config.Options) (*store.Chart, error)
	Clear()
}

// Config holds the session settings.
type Config struct {
	// Initial options, restored by "clear". Nil means config.Defaults().
	Options *config.Options
	Logger  *log.Entry
}

// Session reads commands, one per line, and answers each with OK or an error
// message. Options accumulate across commands until "clear".
type Session struct {
	gen       ChartGenerator
	initial   config.Options
	opts      config.Options
	timeout   time.Duration
	unit      time.Duration
	debugEcho bool
	log       *log.Entry
}

func New(gen ChartGenerator, cfg Config) *Session {
	initial := config.Defaults()
	if cfg.Options != nil {
		initial = *cfg.Options.Clone()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Session{
		gen:     gen,
		initial: initial,
		opts:    *initial.Clone(),
		unit:    time.Second,
		log:     logger,
	}
}

// Options returns the options set so far.
func (s *Session) Options() config.Options { return s.opts }

// Timeout returns the inactivity timeout, zero when disabled.
func (s *Session) Timeout() time.Duration { return s.timeout }

type readResult struct {
	line string
	eof  bool
	err  error
}

// Interact runs the session until "quit", the end of r, an inactivity
// timeout or ctx is done. It returns nil for "quit" and end of input.
//
// The reader goroutine stays blocked in Scan after a timeout or cancellation
// until r yields or fails, so callers must close r once Interact returns.
func (s *Session) Interact(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan readResult)
	done := make(chan struct{})
	defer close(done)

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- readResult{line: scanner.Text()}:
			case <-done:
				return
			}
		}
		select {
		case lines <- readResult{eof: true, err: scanner.Err()}:
		case <-done:
		}
	}()

	if err := respond(w, responseOK); err != nil {
		return err
	}

	var timer *time.Timer
	var expired <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-expired:
			s.log.WithField("timeout", s.timeout).Warn("no activity detected, ending session")
			return ErrInactive

		case res := <-lines:
			if res.err != nil {
				return fmt.Errorf("read command: %w", res.err)
			}
			if res.eof {
				return nil
			}
			err := s.processLine(ctx, res.line, w)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				return err
			}

			if s.timeout > 0 {
				if timer == nil {
					timer = time.NewTimer(s.timeout)
				} else {
					timer.Reset(s.timeout)
				}
				expired = timer.C
			}
		}
	}
}

func (s *Session) processLine(ctx context.Context, line string, w io.Writer) error {
	line = strings.TrimSpace(line)
	if s.debugEcho {
		s.log.Info(line)
	}
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	command, arg := splitCommand(line)
	err := s.processCommand(ctx, command, arg)
	if errors.Is(err, errQuit) {
		return err
	}
	return respond(w, describe(err))
}

func (s *Session) processCommand(ctx context.Context, command, arg string) error {
	switch command {
	case "quit":
		return errQuit
	case "go":
		return s.generate(ctx)
	case "clear":
		s.opts = *s.initial.Clone()
		s.gen.Clear()
		return nil
	case "debug-echo":
		s.debugEcho = true
		return nil
	case "timeout":
		return s.setTimeout(arg)
	case "profile":
		if strings.TrimSpace(arg) == "" {
			return &config.OptionsError{Msg: "Command requires an argument"}
		}
		if err := config.ApplyProfile(arg, &s.opts); err != nil {
			return &config.OptionsError{Msg: err.Error()}
		}
		return nil
	}

	def, ok := config.Lookup(command)
	if !ok {
		return &unrecognisedError{command: command}
	}
	return def.Set(&s.opts, arg)
}

func (s *Session) generate(ctx context.Context) error {
	if s.opts.InputPath == "" {
		return &config.OptionsError{Msg: "Input file path is required"}
	}
	if s.opts.OutputPath == "" {
		return &config.OptionsError{Msg: "Output file path is required"}
	}

	c, err := s.gen.Generate(ctx, &s.opts)
	if err != nil {
		s.log.WithError(err).WithField("input", s.opts.InputPath).Debug("chart generation failed")
		return err
	}
	s.log.WithFields(log.Fields{"chart": c.ID, "output": s.opts.OutputPath}).Info("chart generated")
	return nil
}

func (s *Session) setTimeout(arg string) error {
	seconds, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || seconds <= 1 {
		return &config.OptionsError{Msg: fmt.Sprintf("Invalid timeout: %s", arg)}
	}
	s.timeout = time.Duration(seconds) * s.unit
	return nil
}

type unrecognisedError struct {
	command string
}

func (e *unrecognisedError) Error() string { return "Unrecognised command: " + e.command }

// splitCommand splits a trimmed line at its first run of whitespace.
func splitCommand(line string) (string, string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(line), ""
	}
	return strings.ToLower(line[:i]), strings.TrimLeftFunc(line[i:], unicode.IsSpace)
}

// describe turns a command result into its one-line response.
func describe(err error) string {
	if err == nil {
		return responseOK
	}

	var unrecognised *unrecognisedError
	var saveErr *clichart.SaveError
	var readErr *data.ReadError
	switch {
	case errors.As(err, &unrecognised):
		return unrecognised.Error()
	case errors.Is(err, internalerr.ErrInvalidOptions):
		return "Invalid argument: " + err.Error()
	case errors.Is(err, internalerr.ErrInvalidData):
		return "Invalid data for generating chart: " + err.Error()
	case errors.As(err, &saveErr):
		return "Failed to save chart: " + err.Error()
	case errors.As(err, &readErr):
		return "Error reading chart data: " + err.Error()
	}
	return "General error: " + err.Error()
}

func respond(w io.Writer, msg string) error {
	_, err := fmt.Fprintln(w, msg)
	return err
}
