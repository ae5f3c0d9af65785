package layout

import (
	"widealign/pkg/errors"
)

// LineWidthFunc supplies the width of one line of ordinary (non-wide)
// content flow. The store calls it fresh at every recomputation instead of
// caching the value, because the host's line width can change independently
// of both the view width and the tracked entities. Returning an error marks
// the line width as unavailable and fails the recomputation.
type LineWidthFunc func() (float64, error)

// Option configures a Store at construction time.
type Option func(*Store)

// WithHooks installs instrumentation hooks on the store.
func WithHooks(h Hooks) Option {
	return func(s *Store) {
		if h != nil {
			s.hooks = h
		}
	}
}

// entity is the per-element tracked state.
type entity struct {
	wrapperWidth float64
	leftGap      float64
	gapKnown     bool
}

// Store holds the view width and the set of tracked entities, derives each
// entity's left gap, and broadcasts change events to registered listeners.
// It is purely in-memory and has no knowledge of any host API.
//
// A Store must be constructed with New. It is not safe for concurrent use;
// see the package documentation for the single-threaded contract.
type Store struct {
	lineWidth LineWidthFunc
	hooks     Hooks

	viewWidth float64
	viewKnown bool

	entities map[EntityID]*entity
	order    []EntityID // registration order, drives full-recompute and snapshot order

	wrapperListeners []WrapperWidthListener
	leftGapListeners []LeftGapListener
	viewListeners    []ViewWidthListener
}

// New creates an empty store. lineWidth is required; it is the store's only
// link to the hosting layout engine and is read live at each recomputation.
func New(lineWidth LineWidthFunc, opts ...Option) *Store {
	s := &Store{
		lineWidth: lineWidth,
		hooks:     NopHooks{},
		entities:  make(map[EntityID]*entity),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnWrapperWidthChange registers a listener for wrapperWidth events.
// Listeners are invoked synchronously, in registration order.
func (s *Store) OnWrapperWidthChange(fn WrapperWidthListener) {
	s.wrapperListeners = append(s.wrapperListeners, fn)
}

// OnLeftGapChange registers a listener for leftGap events.
// Listeners are invoked synchronously, in registration order.
func (s *Store) OnLeftGapChange(fn LeftGapListener) {
	s.leftGapListeners = append(s.leftGapListeners, fn)
}

// OnViewWidthChange registers a listener for viewWidth events.
// Listeners are invoked synchronously, in registration order.
func (s *Store) OnViewWidthChange(fn ViewWidthListener) {
	s.viewListeners = append(s.viewListeners, fn)
}

// SetWrapperWidth records the measured content width for entity id,
// creating the entity on first report. If the width differs from the stored
// value (or the entity is new) it stores the width, publishes a
// wrapperWidth event, and recomputes the entity's left gap. Setting an
// unchanged width is an idempotent no-op: no event, no recomputation.
//
// The width is stored even when the subsequent recomputation fails (for
// example because the view width has not been reported yet); the error is
// returned and the gap stays unknown until the next successful
// recomputation.
func (s *Store) SetWrapperWidth(id EntityID, width float64) error {
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "entity id must not be empty")
	}
	if width < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "wrapper width must be non-negative, got %g", width)
	}

	ent, ok := s.entities[id]
	if ok && ent.wrapperWidth == width {
		s.hooks.OnWrapperWidth(id, width, false)
		return nil
	}
	if !ok {
		ent = &entity{}
		s.entities[id] = ent
		s.order = append(s.order, id)
	}
	ent.wrapperWidth = width
	s.hooks.OnWrapperWidth(id, width, true)

	if err := s.emitWrapperWidth(WrapperWidthEvent{Entity: id, Width: width}); err != nil {
		return err
	}
	return s.recomputeLeftGap(id)
}

// SetViewWidth records the available width of the content column
// (excluding its internal padding). The value is stored and a viewWidth
// event is published unconditionally, then every tracked entity's left gap
// is recomputed, even when the new width equals the previous one.
func (s *Store) SetViewWidth(width float64) error {
	if width < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "view width must be non-negative, got %g", width)
	}

	s.viewWidth = width
	s.viewKnown = true
	s.hooks.OnViewWidth(width, len(s.order))

	if err := s.emitViewWidth(ViewWidthEvent{Width: width}); err != nil {
		return err
	}
	for _, id := range s.order {
		if err := s.recomputeLeftGap(id); err != nil {
			return err
		}
	}
	return nil
}

// RemoveEntity stops tracking id and releases its state. Hosts whose
// elements outlive no document view never need this; long-lived hosts call
// it to bound memory when an element leaves the document.
func (s *Store) RemoveEntity(id EntityID) error {
	if _, ok := s.entities[id]; !ok {
		return errors.New(errors.ErrCodeUnknownEntity, "no entity %q", id)
	}
	delete(s.entities, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// recomputeLeftGap derives the left gap for id from its wrapper width, the
// current view width, and a freshly read line width, then stores it and
// publishes a leftGap event. The event is published on every call, without
// change-detection on the derived value.
func (s *Store) recomputeLeftGap(id EntityID) error {
	ent, ok := s.entities[id]
	if !ok {
		return errors.New(errors.ErrCodeUnknownEntity, "no entity %q", id)
	}
	if !s.viewKnown {
		err := errors.New(errors.ErrCodeMissingDependency, "view width not reported yet for entity %q", id)
		s.hooks.OnError(EventLeftGap, err)
		return err
	}
	if s.lineWidth == nil {
		err := errors.New(errors.ErrCodeMissingDependency, "no line width source configured")
		s.hooks.OnError(EventLeftGap, err)
		return err
	}
	lineWidth, err := s.lineWidth()
	if err != nil {
		werr := errors.Wrap(errors.ErrCodeMissingDependency, err, "line width unavailable")
		s.hooks.OnError(EventLeftGap, werr)
		return werr
	}

	ent.leftGap = leftGap(ent.wrapperWidth, s.viewWidth, lineWidth)
	ent.gapKnown = true
	s.hooks.OnLeftGap(id, ent.leftGap)

	return s.emitLeftGap(LeftGapEvent{Entity: id, Gap: ent.leftGap})
}

// leftGap applies the three-way piecewise offset rule.
func leftGap(wrapperWidth, viewWidth, lineWidth float64) float64 {
	switch {
	case wrapperWidth < lineWidth:
		// Fits within a normal line, no shift needed.
		return 0
	case wrapperWidth < viewWidth:
		// Wider than a line, narrower than the view: center the excess.
		return (wrapperWidth - lineWidth) / 2
	default:
		// As wide as the view or wider: clamp to centering the view itself
		// against the line and let the rest overflow into scroll.
		return (viewWidth - lineWidth) / 2
	}
}

// ViewWidth returns the current view width. ok is false until the first
// SetViewWidth call; an unreported view width is distinct from zero.
func (s *Store) ViewWidth() (width float64, ok bool) {
	return s.viewWidth, s.viewKnown
}

// WrapperWidth returns the stored wrapper width for id.
func (s *Store) WrapperWidth(id EntityID) (float64, error) {
	ent, ok := s.entities[id]
	if !ok {
		return 0, errors.New(errors.ErrCodeUnknownEntity, "no entity %q", id)
	}
	return ent.wrapperWidth, nil
}

// LeftGap returns the most recently derived left gap for id. It fails with
// MISSING_DEPENDENCY if no recomputation has succeeded for the entity yet.
func (s *Store) LeftGap(id EntityID) (float64, error) {
	ent, ok := s.entities[id]
	if !ok {
		return 0, errors.New(errors.ErrCodeUnknownEntity, "no entity %q", id)
	}
	if !ent.gapKnown {
		return 0, errors.New(errors.ErrCodeMissingDependency, "left gap not derived yet for entity %q", id)
	}
	return ent.leftGap, nil
}

// Entities returns the tracked entity ids in registration order.
func (s *Store) Entities() []EntityID {
	out := make([]EntityID, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) emitWrapperWidth(ev WrapperWidthEvent) error {
	for i, fn := range s.wrapperListeners {
		if err := fn(ev); err != nil {
			werr := errors.Wrap(errors.ErrCodeListenerFailure, err, "wrapperWidth listener %d failed for entity %q", i, ev.Entity)
			s.hooks.OnError(EventWrapperWidth, werr)
			return werr
		}
	}
	return nil
}

func (s *Store) emitLeftGap(ev LeftGapEvent) error {
	for i, fn := range s.leftGapListeners {
		if err := fn(ev); err != nil {
			werr := errors.Wrap(errors.ErrCodeListenerFailure, err, "leftGap listener %d failed for entity %q", i, ev.Entity)
			s.hooks.OnError(EventLeftGap, werr)
			return werr
		}
	}
	return nil
}

func (s *Store) emitViewWidth(ev ViewWidthEvent) error {
	for i, fn := range s.viewListeners {
		if err := fn(ev); err != nil {
			werr := errors.Wrap(errors.ErrCodeListenerFailure, err, "viewWidth listener %d failed", i)
			s.hooks.OnError(EventViewWidth, werr)
			return werr
		}
	}
	return nil
}
