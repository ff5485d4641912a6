package image

// Store owns images keyed by UID and tracks the active image.
// Iteration order is insertion order.
type Store struct {
	images      map[UID]*Image
	order       []UID
	nextUID     UID
	activeImage *UID
}

// NewStore creates an empty image store.
func NewStore() *Store {
	return &Store{
		images:  make(map[UID]*Image),
		nextUID: 1,
	}
}

// Add inserts an image and returns its new UID. The first image added
// becomes the active image.
func (s *Store) Add(img *Image) UID {
	uid := s.nextUID
	s.nextUID++
	s.images[uid] = img
	s.order = append(s.order, uid)
	if s.activeImage == nil {
		v := uid
		s.activeImage = &v
	}
	return uid
}

// Get returns the image with the given UID, or nil if absent.
func (s *Store) Get(uid UID) *Image {
	return s.images[uid]
}

// Remove deletes the image with the given UID. The caller is
// responsible for removing the image's annotations from the
// annotation store.
func (s *Store) Remove(uid UID) {
	if _, ok := s.images[uid]; !ok {
		return
	}
	delete(s.images, uid)
	for i, u := range s.order {
		if u == uid {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.activeImage != nil && *s.activeImage == uid {
		s.activeImage = nil
		if len(s.order) > 0 {
			v := s.order[0]
			s.activeImage = &v
		}
	}
}

// UIDs returns all image UIDs in insertion order.
func (s *Store) UIDs() []UID {
	out := make([]UID, len(s.order))
	copy(out, s.order)
	return out
}

// ActiveImage returns the active image UID, if any.
func (s *Store) ActiveImage() (UID, bool) {
	if s.activeImage == nil {
		return 0, false
	}
	return *s.activeImage, true
}

// SetActiveImage marks the given image as active. Unknown UIDs are
// ignored and reported.
func (s *Store) SetActiveImage(uid UID) bool {
	if _, ok := s.images[uid]; !ok {
		return false
	}
	v := uid
	s.activeImage = &v
	return true
}

// Len returns the number of stored images.
func (s *Store) Len() int {
	return len(s.images)
}
