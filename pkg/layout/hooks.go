package layout

// Hooks receives instrumentation events from store operations. Implementations
// must be fast and must not call back into the store. The HTTP adapter uses
// hooks to feed Prometheus metrics; the default is a no-op.
type Hooks interface {
	// OnWrapperWidth records a SetWrapperWidth call. changed is false for
	// the idempotent no-op case.
	OnWrapperWidth(id EntityID, width float64, changed bool)

	// OnViewWidth records a SetViewWidth call and the number of entities
	// that will be recomputed as a result.
	OnViewWidth(width float64, tracked int)

	// OnLeftGap records one completed left-gap recomputation.
	OnLeftGap(id EntityID, gap float64)

	// OnError records an operation that failed, keyed by event kind.
	OnError(kind EventKind, err error)
}

// NopHooks is the no-op Hooks implementation used by default.
type NopHooks struct{}

func (NopHooks) OnWrapperWidth(EntityID, float64, bool) {}
func (NopHooks) OnViewWidth(float64, int)               {}
func (NopHooks) OnLeftGap(EntityID, float64)            {}
func (NopHooks) OnError(EventKind, error)               {}
