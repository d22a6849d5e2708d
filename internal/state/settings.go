package state

import "lifecoach/internal/types"

// UpdateCoachSettings replaces the coach persona configuration.
func (s *Store) UpdateCoachSettings(settings types.CoachSettings) {
	s.Transition(func(st types.AppState) types.AppState {
		st.CoachSettings = settings
		return st
	})
}

// UpdateStorageConfig replaces the cloud backend configuration.
func (s *Store) UpdateStorageConfig(cfg types.StorageConfig) {
	s.Transition(func(st types.AppState) types.AppState {
		st.StorageConfig = cfg
		return st
	})
}

// SetTheme records the UI theme preference.
func (s *Store) SetTheme(theme string) {
	s.Transition(func(st types.AppState) types.AppState {
		st.Theme = theme
		return st
	})
}
