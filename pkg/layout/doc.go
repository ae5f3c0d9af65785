// Package layout implements the reactive layout state store that keeps wide
// elements horizontally centered inside a narrower content column.
//
// The store tracks two kinds of measurements pushed in by a host adapter:
// the width of the scrollable content column (the view width, excluding its
// internal padding) and the measured content width of each tracked wide
// element (its wrapper width). From these, and from a line width read live
// from the host at each recomputation, it derives a per-element left gap:
// the horizontal offset that centers the element against the normal line of
// content without ever clipping it on the left.
//
// # Offset Rule
//
// The left gap follows a three-way piecewise rule for line width L, view
// width V, and wrapper width W:
//   - W < L: the element fits within a normal line; gap is 0.
//   - L < W < V: the element is centered within the extra space the view
//     offers beyond one line; gap is (W - L) / 2.
//   - W >= V: the shift is clamped to (V - L) / 2, which centers the view
//     itself against the line. Remaining excess width is left to horizontal
//     scrolling rather than shifted further.
//
// # Change Propagation
//
// The store is purely reactive: it never initiates measurement. Hosts push
// values through SetWrapperWidth and SetViewWidth, and subscribe to three
// event kinds (wrapperWidth, leftGap, viewWidth) via the On*Change methods.
// Wrapper width changes are change-detected: setting an unchanged value is
// a no-op. View width changes always propagate and recompute every tracked
// entity. Left gap events are published unconditionally on every
// recomputation, even when the derived value is numerically unchanged.
//
// # Concurrency
//
// The store is single-threaded by contract. Every operation runs to
// completion, including synchronous listener invocation in registration
// order, before returning. Hosts that receive measurements concurrently
// (for example an HTTP adapter) must serialize their calls; the store
// performs no locking of its own.
//
// # Errors
//
// Recomputing a gap before both the wrapper width and the view width are
// known, or while the host cannot supply a line width, fails with a
// MISSING_DEPENDENCY error rather than defaulting to zero. Referencing an
// entity that was never registered fails with UNKNOWN_ENTITY. A listener
// error aborts the remaining listeners for that event and unwinds the
// triggering Set call as a LISTENER_FAILURE. The store never swallows
// errors.
package layout
