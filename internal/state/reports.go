package state

import "lifecoach/internal/types"

// ReportUpdate carries the fields of a partial report update.
type ReportUpdate struct {
	Title   *string
	Content *string
	Rating  *int
}

// AddReport prepends a generated daily report.
func (s *Store) AddReport(date, title, content string, rating int) types.DailyReport {
	report := types.DailyReport{
		ID:      newID(s.nowTime()),
		Date:    date,
		Title:   title,
		Content: content,
		Rating:  rating,
	}
	s.Transition(func(st types.AppState) types.AppState {
		st.Reports = append([]types.DailyReport{report}, st.Reports...)
		return st
	})
	return report
}

// UpdateReport applies a partial update, typically a rating set by the user
// after reading the report.
func (s *Store) UpdateReport(id string, upd ReportUpdate) {
	s.Transition(func(st types.AppState) types.AppState {
		for i := range st.Reports {
			if st.Reports[i].ID != id {
				continue
			}
			if upd.Title != nil {
				st.Reports[i].Title = *upd.Title
			}
			if upd.Content != nil {
				st.Reports[i].Content = *upd.Content
			}
			if upd.Rating != nil {
				st.Reports[i].Rating = *upd.Rating
			}
			break
		}
		return st
	})
}

// DeleteReport removes a report.
func (s *Store) DeleteReport(id string) {
	s.Transition(func(st types.AppState) types.AppState {
		out := st.Reports[:0]
		for _, r := range st.Reports {
			if r.ID != id {
				out = append(out, r)
			}
		}
		st.Reports = out
		return st
	})
}
