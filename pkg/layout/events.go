package layout

// EntityID identifies one tracked wide element. IDs are opaque, assigned by
// the host adapter at first observation, stable for the element's lifetime,
// and never reused. Adapters in this repository allocate UUIDs.
type EntityID string

// EventKind names one of the three change-event kinds the store publishes.
type EventKind string

// The closed set of event kinds.
const (
	EventWrapperWidth EventKind = "wrapperWidth"
	EventLeftGap      EventKind = "leftGap"
	EventViewWidth    EventKind = "viewWidth"
)

// WrapperWidthEvent is published when an entity's stored wrapper width
// actually changes (including the first report for a new entity).
type WrapperWidthEvent struct {
	Entity EntityID
	Width  float64
}

// LeftGapEvent is published on every recomputation of an entity's left gap,
// without change-detection on the derived value.
type LeftGapEvent struct {
	Entity EntityID
	Gap    float64
}

// ViewWidthEvent is published on every SetViewWidth call, whether or not
// the value differs from the previous one.
type ViewWidthEvent struct {
	Width float64
}

// Listener signatures, one per event kind. A non-nil error aborts the
// remaining listeners for that event and unwinds the triggering Set call.
type (
	WrapperWidthListener func(WrapperWidthEvent) error
	LeftGapListener      func(LeftGapEvent) error
	ViewWidthListener    func(ViewWidthEvent) error
)
