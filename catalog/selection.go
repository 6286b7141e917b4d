package catalog

// MaxSelected bounds how many leaf categories a price filter may cover.
const MaxSelected = 10

// Notice is a user-facing warning emitted by selection operations.
// A rejected toggle is not an error — the selection simply stays put.
type Notice string

const (
	NoticeNone         Notice = ""
	NoticeLimitReached Notice = "no more than 10 categories can be selected"
)

// Selection tracks the chosen leaf-category ids, in the order they were
// picked. It is independent of tree shape and is reset whenever the
// active catalog changes.
type Selection struct {
	ids []int
}

func NewSelection() *Selection {
	return &Selection{}
}

// Toggle removes id when present. When absent it is appended, unless the
// selection is already at MaxSelected, in which case the add is rejected
// and a limit notice returned.
func (s *Selection) Toggle(id int) Notice {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return NoticeNone
		}
	}
	if len(s.ids) >= MaxSelected {
		return NoticeLimitReached
	}
	s.ids = append(s.ids, id)
	return NoticeNone
}

// SelectAll replaces the selection with the first MaxSelected of leafIDs
// in the given (traversal) order, emitting a limit notice when leafIDs
// had to be truncated.
func (s *Selection) SelectAll(leafIDs []int) Notice {
	limit := len(leafIDs)
	notice := NoticeNone
	if limit > MaxSelected {
		limit = MaxSelected
		notice = NoticeLimitReached
	}
	s.ids = append([]int(nil), leafIDs[:limit]...)
	return notice
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
}

// Has reports whether id is currently selected.
func (s *Selection) Has(id int) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// IDs returns the selected ids in selection order. The returned slice is
// a copy.
func (s *Selection) IDs() []int {
	return append([]int(nil), s.ids...)
}

// Len returns the selection size.
func (s *Selection) Len() int {
	return len(s.ids)
}
