package play

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/proseplay/proseplay/annotation"
	"github.com/rs/zerolog"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrExpanded        = errors.New("document is expanded")
	ErrStateMismatch   = errors.New("state does not match the document")
)

// Rand is the source of randomness for [Window.RandomIndex].
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniformly distributed integer in [0, n).
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// Scheduler runs fire-and-forget transition completions.
type Scheduler interface {
	// AfterFunc calls f once d has elapsed. The returned stop function cancels the call,
	// and reports whether the call was stopped before it ran.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type config struct {
	rand      Rand
	scheduler Scheduler
	functions *Functions
	strict    bool
	log       zerolog.Logger

	maxWarnings int
}

// Option configures a [Document] or a standalone [Window].
type Option func(*config)

// WithRand replaces the default math/rand/v2 source, e.g. to make tests reproducible.
func WithRand(r Rand) Option {
	return func(c *config) {
		c.rand = r
	}
}

// WithScheduler replaces the default time.AfterFunc based scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *config) {
		c.scheduler = s
	}
}

// WithFunctions makes the Document use the provided registry, which can be shared between Documents.
func WithFunctions(f *Functions) Option {
	return func(c *config) {
		c.functions = f
	}
}

// WithStrict turns silent leniency into errors: out of range indices return [ErrIndexOutOfRange]
// and mutations of an expanded Document return [ErrExpanded]. The state is left untouched either way.
func WithStrict() Option {
	return func(c *config) {
		c.strict = true
	}
}

// WithLogger sets the logger for debug events. Logging is disabled by default.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// WithMaxWarnings limits the Warnings kept by [Parse] and [Document.Load], a negative limit
// is taken as zero. The default is [annotation.DefaultMaxWarnings].
func WithMaxWarnings(limit int) Option {
	return func(c *config) {
		c.maxWarnings = max(limit, 0)
	}
}

func newConfig(opts []Option) config {
	c := config{
		rand:        globalRand{},
		scheduler:   timerScheduler{},
		log:         zerolog.Nop(),
		maxWarnings: annotation.DefaultMaxWarnings,
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.functions == nil {
		c.functions = NewFunctions()
	}

	return c
}
