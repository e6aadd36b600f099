// internal/jobs/merge.go
package jobs

// ImageSet accumulates images across repeated polls. Merging is keyed on the
// image URL so the same image observed in two polls produces one entry, and a
// "still generating" placeholder counter is decremented exactly once per newly
// observed image.
type ImageSet struct {
	Images  []GeneratedImage
	Pending int

	seen map[string]struct{}
}

// NewImageSet creates a set expecting the given number of images.
func NewImageSet(expected int) *ImageSet {
	return &ImageSet{
		Pending: expected,
		seen:    make(map[string]struct{}),
	}
}

// Merge folds a polled batch into the set and returns how many entries were new.
func (s *ImageSet) Merge(batch []GeneratedImage) int {
	added := 0
	for _, img := range batch {
		if img.URL == "" {
			continue
		}
		if _, ok := s.seen[img.URL]; ok {
			continue
		}
		s.seen[img.URL] = struct{}{}
		s.Images = append(s.Images, img)
		added++
		if s.Pending > 0 {
			s.Pending--
		}
	}
	return added
}

// Complete reports whether every expected image has arrived.
func (s *ImageSet) Complete() bool {
	return s.Pending == 0
}
