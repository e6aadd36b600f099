// internal/jobs/merge_test.go
package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageSetMerge(t *testing.T) {
	t.Run("deduplicates by URL across polls", func(t *testing.T) {
		set := NewImageSet(4)

		added := set.Merge([]GeneratedImage{
			{URL: "https://cdn/a.png"},
			{URL: "https://cdn/b.png"},
		})
		assert.Equal(t, 2, added)
		assert.Len(t, set.Images, 2)
		assert.Equal(t, 2, set.Pending)

		// Second poll repeats the batch plus one new image.
		added = set.Merge([]GeneratedImage{
			{URL: "https://cdn/a.png"},
			{URL: "https://cdn/b.png"},
			{URL: "https://cdn/c.png"},
		})
		assert.Equal(t, 1, added)
		assert.Len(t, set.Images, 3)
		assert.Equal(t, 1, set.Pending)
	})

	t.Run("decrements pending exactly once per new image", func(t *testing.T) {
		set := NewImageSet(2)

		set.Merge([]GeneratedImage{{URL: "https://cdn/a.png"}})
		set.Merge([]GeneratedImage{{URL: "https://cdn/a.png"}})
		set.Merge([]GeneratedImage{{URL: "https://cdn/a.png"}})
		assert.Equal(t, 1, set.Pending)
		assert.False(t, set.Complete())

		set.Merge([]GeneratedImage{{URL: "https://cdn/b.png"}})
		assert.Equal(t, 0, set.Pending)
		assert.True(t, set.Complete())
	})

	t.Run("pending never goes negative", func(t *testing.T) {
		set := NewImageSet(1)
		set.Merge([]GeneratedImage{
			{URL: "https://cdn/a.png"},
			{URL: "https://cdn/b.png"},
			{URL: "https://cdn/c.png"},
		})
		assert.Equal(t, 0, set.Pending)
		assert.Len(t, set.Images, 3)
	})

	t.Run("ignores entries without a URL", func(t *testing.T) {
		set := NewImageSet(2)
		added := set.Merge([]GeneratedImage{
			{URL: ""},
			{URL: "https://cdn/a.png"},
		})
		assert.Equal(t, 1, added)
		assert.Len(t, set.Images, 1)
		assert.Equal(t, 1, set.Pending)
	})

	t.Run("preserves first-seen order", func(t *testing.T) {
		set := NewImageSet(3)
		set.Merge([]GeneratedImage{{URL: "https://cdn/b.png"}})
		set.Merge([]GeneratedImage{{URL: "https://cdn/a.png"}, {URL: "https://cdn/b.png"}})
		set.Merge([]GeneratedImage{{URL: "https://cdn/c.png"}})

		urls := make([]string, 0, len(set.Images))
		for _, img := range set.Images {
			urls = append(urls, img.URL)
		}
		assert.Equal(t, []string{"https://cdn/b.png", "https://cdn/a.png", "https://cdn/c.png"}, urls)
	})
}
