package feed

import (
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/breakmap/pkg/domain"
)

// Meta reads feed-level information (title, updated time, entry count) from the document
func Meta(content string) (domain.FeedMeta, error) {
	f, err := gofeed.NewParser().ParseString(content)
	if err != nil {
		return domain.FeedMeta{}, fmt.Errorf("parse feed metadata: %w", err)
	}

	meta := domain.FeedMeta{
		Title:   f.Title,
		Type:    f.FeedType,
		Entries: len(f.Items),
	}
	if f.UpdatedParsed != nil {
		meta.Updated = *f.UpdatedParsed
	} else if f.PublishedParsed != nil {
		meta.Updated = *f.PublishedParsed
	}
	return meta, nil
}
