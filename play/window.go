package play

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/proseplay/proseplay/annotation"
)

// Choice is a single alternative displayed by a [Window].
type Choice struct {
	Text string `json:"text"`

	// Function is the name of the side-effect triggered when the choice becomes current.
	Function string `json:"function,omitempty"`
}

// State is the interaction state of a [Window].
type State int

const (
	// StateIdle means the window rests on its current choice.
	StateIdle State = iota

	// StateInteracting means the window is being dragged, either as the origin of a gesture
	// or as a link sibling following it.
	StateInteracting

	// StateTransitioning means the window snaps to its current choice and waits for
	// the transition to complete.
	StateTransitioning
)

func (s State) String() string {
	switch s {
	case StateInteracting:
		return "interacting"
	case StateTransitioning:
		return "transitioning"
	default:
		return "idle"
	}
}

// Window is the runtime instance of a choice group. It displays exactly one of its choices.
//
// All windows of a [Document] share the Document's mutex. Functions are always called
// after the mutex is released, so a [Func] may call back into the Document.
type Window struct {
	mu  *sync.Mutex
	cfg *config

	// doc is the owning Document, nil for a standalone window. Selection requests
	// of an owned window go through the Document.
	doc *Document

	index       int
	choices     []Choice
	current     int
	linkIndex   int
	orientation annotation.Orientation

	// siblings are the other windows with the same link index.
	// Set once, after every window of the Document is built.
	siblings []*Window

	state State

	// generation is incremented by every new selection request. A scheduled completion
	// captures the generation and does nothing if it has changed.
	generation uint64
	stop       func() bool

	// position is the scroll offset in choice-slot units, ephemeral drag state.
	position float64
}

// NewWindow creates a standalone Window from the group, which must have at least 2 choices.
func NewWindow(g annotation.Group, opts ...Option) (*Window, error) {
	cfg := newConfig(opts)
	return newWindow(0, g, &cfg, &sync.Mutex{})
}

func newWindow(index int, g annotation.Group, cfg *config, mu *sync.Mutex) (*Window, error) {
	if len(g.Choices) < 2 {
		return nil, fmt.Errorf("window %d: %w: got %d", index, annotation.ErrTooFewChoices, len(g.Choices))
	}

	w := &Window{
		mu:          mu,
		cfg:         cfg,
		index:       index,
		choices:     make([]Choice, 0, len(g.Choices)),
		orientation: g.Orientation,
	}

	if g.LinkIndex > 0 {
		w.linkIndex = g.LinkIndex
	}

	for _, c := range g.Choices {
		w.choices = append(w.choices, Choice{Text: c.Text, Function: c.Function})
	}

	return w, nil
}

// AddChoice appends the choice to the list. Duplicates are legal.
func (w *Window) AddChoice(c Choice) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.choices = append(w.choices, c)
}

// Activate makes the choice with the index current, clamped to the list bounds.
// It never triggers functions.
//
// A window of a [Document] is activated together with its link siblings, and aborts a drag
// gesture involving them. It is ignored while the Document is expanded, or once the
// Document has been rebuilt.
func (w *Window) Activate(index int) {
	if w.doc != nil {
		w.doc.activateWindow(w, index)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.activate(index)
}

// Reactivate re-asserts the current choice, resetting the ephemeral scroll position.
// The selection never changes.
func (w *Window) Reactivate() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.activate(w.current)
}

// RandomIndex samples an index in [0, Len()) from the configured [Rand].
func (w *Window) RandomIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.randomIndex()
}

// SlideToChoice requests the transition to the choice with the index, clamped to the list bounds,
// and returns the current index afterwards. Any in-flight transition is superseded. The function of
// the arriving choice is triggered once the transition completes, which is immediately if d <= 0.
//
// A window of a [Document] slides like [Document.SlideWindow] does, except that the index is always
// clamped. A request ignored by the Document leaves the window unchanged.
func (w *Window) SlideToChoice(index int, d time.Duration) int {
	if w.doc != nil {
		return w.doc.slideOwned(w, index, d)
	}

	w.mu.Lock()
	idx, fired := w.slide(index, d, nil)
	w.mu.Unlock()

	w.cfg.functions.fire(fired...)

	return idx
}

func (w *Window) Index() int {
	return w.index
}

// Choices returns a copy of the choice list.
func (w *Window) Choices() []Choice {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Choice, len(w.choices))
	copy(out, w.choices)
	return out
}

func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.choices)
}

// Current returns the index of the current choice.
func (w *Window) Current() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.current
}

func (w *Window) CurrentText() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.currentText()
}

// LinkIndex returns the link group number, or 0 if the window is not linked.
func (w *Window) LinkIndex() int {
	return w.linkIndex
}

func (w *Window) Orientation() annotation.Orientation {
	return w.orientation
}

func (w *Window) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// Position returns the scroll offset in choice-slot units. It equals Current() unless
// the window is being dragged.
func (w *Window) Position() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.position
}

// Siblings returns the other windows of the window's link group.
func (w *Window) Siblings() []*Window {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]*Window, len(w.siblings))
	copy(out, w.siblings)
	return out
}

// The methods below must be called with w.mu held.

func (w *Window) clamp(index int) int {
	return max(0, min(index, len(w.choices)-1))
}

func (w *Window) activate(index int) {
	w.current = w.clamp(index)
	w.position = float64(w.current)
}

func (w *Window) currentText() string {
	return w.choices[w.current].Text
}

func (w *Window) randomIndex() int {
	return w.cfg.rand.IntN(len(w.choices))
}

// dragTo moves the list to the position and makes the nearest choice current.
func (w *Window) dragTo(position float64) {
	w.position = position
	w.current = w.clamp(int(math.Round(position)))
}

// cancel supersedes any in-flight transition.
func (w *Window) cancel() {
	w.generation++

	if w.stop != nil {
		w.stop()
		w.stop = nil
	}
}

// slide selects the choice and starts the transition. Triggers of transitions completed
// synchronously are appended to fired, which must be fired after the lock is released.
func (w *Window) slide(index int, d time.Duration, fired []Trigger) (int, []Trigger) {
	w.cancel()
	w.activate(index)
	return w.current, w.transition(d, fired)
}

// transition moves the window into StateTransitioning and schedules the completion.
func (w *Window) transition(d time.Duration, fired []Trigger) []Trigger {
	w.state = StateTransitioning

	if d <= 0 {
		return w.finish(fired)
	}

	gen := w.generation
	w.stop = w.cfg.scheduler.AfterFunc(d, func() {
		w.complete(gen)
	})

	return fired
}

// complete is called by the scheduler. It does nothing if the transition was superseded.
func (w *Window) complete(gen uint64) {
	w.mu.Lock()

	if gen != w.generation || w.state != StateTransitioning {
		w.mu.Unlock()
		return
	}

	fired := w.finish(nil)
	w.mu.Unlock()

	w.cfg.functions.fire(fired...)
}

func (w *Window) finish(fired []Trigger) []Trigger {
	w.state = StateIdle
	w.stop = nil

	c := w.choices[w.current]
	if c.Function == "" {
		return fired
	}

	return append(fired, Trigger{
		Name:   c.Function,
		Window: w.index,
		Choice: w.current,
		Text:   c.Text,
	})
}
