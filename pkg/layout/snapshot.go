package layout

// EntitySnapshot is the externally visible state of one tracked entity.
// LeftGapKnown is false until the first successful recomputation.
type EntitySnapshot struct {
	ID           EntityID `json:"id"`
	WrapperWidth float64  `json:"wrapper_width"`
	LeftGap      float64  `json:"left_gap"`
	LeftGapKnown bool     `json:"left_gap_known"`
}

// Snapshot is a point-in-time copy of the whole store, used by read-only
// consumers such as the HTTP adapter's GET endpoints.
type Snapshot struct {
	ViewWidth      float64          `json:"view_width"`
	ViewWidthKnown bool             `json:"view_width_known"`
	Entities       []EntitySnapshot `json:"entities"`
}

// Snapshot returns a copy of the current state with entities in
// registration order. The copy does not alias store internals.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		ViewWidth:      s.viewWidth,
		ViewWidthKnown: s.viewKnown,
		Entities:       make([]EntitySnapshot, 0, len(s.order)),
	}
	for _, id := range s.order {
		ent := s.entities[id]
		snap.Entities = append(snap.Entities, EntitySnapshot{
			ID:           id,
			WrapperWidth: ent.wrapperWidth,
			LeftGap:      ent.leftGap,
			LeftGapKnown: ent.gapKnown,
		})
	}
	return snap
}
