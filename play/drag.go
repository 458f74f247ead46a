package play

import (
	"slices"
	"time"
)

// gesture is an active drag. The origin is authoritative, its link siblings follow it passively.
type gesture struct {
	windows  []*Window // origin first
	position float64
}

// DragStart starts a drag gesture on the window.
//
// Behaviour:
//   - Ignored if another gesture is active or the window is not idle.
//   - In-flight transitions of the link siblings are superseded, and the siblings follow the origin
//     until the gesture ends.
func (d *Document) DragStart(window int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ok, err := d.mutable(); !ok {
		return err
	}

	w, err := d.lookup(window)
	if w == nil {
		return err
	}

	if d.drag != nil || w.state != StateIdle {
		d.cfg.log.Debug().Int("window", window).Stringer("state", w.state).Msg("drag start ignored")
		return nil
	}

	g := &gesture{
		windows:  append([]*Window{w}, w.siblings...),
		position: float64(w.current),
	}

	for _, dw := range g.windows {
		dw.cancel()
		dw.state = StateInteracting
		dw.dragTo(g.position)
	}

	d.drag = g

	d.cfg.log.Debug().Int("window", window).Int("followers", len(w.siblings)).Msg("drag start")

	return nil
}

// DragMove moves the dragged windows by delta choice slots. The position is bounded by the choice list
// of the origin, and every dragged window selects its own nearest choice. Without a gesture it's a no-op.
func (d *Document) DragMove(delta float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g := d.drag
	if g == nil {
		return
	}

	last := float64(len(g.windows[0].choices) - 1)
	g.position = max(0, min(g.position+delta, last))

	for _, w := range g.windows {
		w.dragTo(g.position)
	}
}

// DragEnd snaps every dragged window to its nearest choice and starts the transitions.
// The functions of the arriving choices are triggered once the transitions complete.
// Without a gesture it's a no-op.
func (d *Document) DragEnd(dur time.Duration) {
	d.mu.Lock()

	g := d.drag
	if g == nil {
		d.mu.Unlock()
		return
	}

	d.drag = nil

	var fired []Trigger
	for _, w := range g.windows {
		w.activate(w.current)
		fired = w.transition(dur, fired)
	}

	d.cfg.log.Debug().Int("window", g.windows[0].index).Int("choice", g.windows[0].current).Msg("drag end")

	d.mu.Unlock()

	d.cfg.functions.fire(fired...)
}

// Dragging reports whether a drag gesture is active.
func (d *Document) Dragging() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.drag != nil
}

// abortDrag drops the gesture without triggers if it involves w, or unconditionally if w is nil.
// Dragged windows keep the choice nearest to the last position.
func (d *Document) abortDrag(w *Window) {
	g := d.drag
	if g == nil || (w != nil && !slices.Contains(g.windows, w)) {
		return
	}

	d.drag = nil

	for _, dw := range g.windows {
		dw.activate(dw.current)
		dw.state = StateIdle
	}

	d.cfg.log.Debug().Int("window", g.windows[0].index).Msg("drag aborted")
}
