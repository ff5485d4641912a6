package annotation

// Store owns annotations keyed by UID. Iteration order is insertion
// order, which is also the bottom-to-top draw order.
type Store struct {
	annotations map[UID]*Annotation
	order       []UID
	nextUID     UID
}

// NewStore creates an empty annotation store.
func NewStore() *Store {
	return &Store{
		annotations: make(map[UID]*Annotation),
		nextUID:     1,
	}
}

// Add inserts an annotation and returns its new UID.
func (s *Store) Add(a *Annotation) UID {
	uid := s.nextUID
	s.nextUID++
	s.annotations[uid] = a
	s.order = append(s.order, uid)
	return uid
}

// Get returns the annotation with the given UID, or nil if absent.
func (s *Store) Get(uid UID) *Annotation {
	return s.annotations[uid]
}

// Remove deletes the annotation with the given UID.
func (s *Store) Remove(uid UID) {
	if _, ok := s.annotations[uid]; !ok {
		return
	}
	delete(s.annotations, uid)
	for i, u := range s.order {
		if u == uid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// UIDs returns all annotation UIDs in insertion order.
func (s *Store) UIDs() []UID {
	out := make([]UID, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of stored annotations.
func (s *Store) Len() int {
	return len(s.annotations)
}

// Clipboard is the single-slot copy buffer for one annotation.
type Clipboard struct {
	annot *Annotation
}

// NewClipboard creates an empty clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

// Put stores a deep copy of the annotation, replacing any previous
// content.
func (c *Clipboard) Put(a *Annotation) {
	if a == nil {
		c.annot = nil
		return
	}
	c.annot = a.Clone()
}

// Get returns a deep copy of the stored annotation, or nil if the
// clipboard is empty. The clipboard keeps its content so repeated
// pastes work.
func (c *Clipboard) Get() *Annotation {
	if c.annot == nil {
		return nil
	}
	return c.annot.Clone()
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() {
	c.annot = nil
}
