package state

import "lifecoach/internal/types"

// VisionUpdate carries the fields of a partial vision update.
type VisionUpdate struct {
	Title    *string
	Archived *bool
}

// AddVision prepends a new vision.
func (s *Store) AddVision(title string) types.Vision {
	vision := types.Vision{
		ID:        newID(s.nowTime()),
		Title:     title,
		CreatedAt: s.nowMillis(),
	}
	s.Transition(func(st types.AppState) types.AppState {
		st.Visions = append([]types.Vision{vision}, st.Visions...)
		return st
	})
	return vision
}

// UpdateVision applies a partial update.
func (s *Store) UpdateVision(id string, upd VisionUpdate) {
	s.Transition(func(st types.AppState) types.AppState {
		for i := range st.Visions {
			if st.Visions[i].ID != id {
				continue
			}
			if upd.Title != nil {
				st.Visions[i].Title = *upd.Title
			}
			if upd.Archived != nil {
				st.Visions[i].Archived = *upd.Archived
			}
			break
		}
		return st
	})
}

// DeleteVision removes a vision and detaches goals that pointed at it in
// the same transition.
func (s *Store) DeleteVision(id string) {
	s.Transition(func(st types.AppState) types.AppState {
		out := st.Visions[:0]
		for _, v := range st.Visions {
			if v.ID != id {
				out = append(out, v)
			}
		}
		st.Visions = out
		for i := range st.Goals {
			if st.Goals[i].VisionID == id {
				st.Goals[i].VisionID = ""
			}
		}
		return st
	})
}
