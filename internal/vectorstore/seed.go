package vectorstore

import (
	"context"
	"fmt"

	"github.com/amishk599/coldreach/internal/model"
)

// LinksKey is the metadata key holding a portfolio entry's links.
const LinksKey = "links"

// Seed adds one document per portfolio entry, embedding the tech stack and
// keeping the links as metadata. It does nothing if the collection already
// holds documents, and returns the number of documents added.
func Seed(ctx context.Context, coll *Collection, entries []model.Entry) (int, error) {
	n, err := coll.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	docs := entryDocuments(entries)
	if err := coll.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("seeding collection %s: %w", coll.Name(), err)
	}
	return len(docs), nil
}

// Rebuild replaces the collection's contents with entries. If any entry fails
// to embed the collection is left as it was.
func Rebuild(ctx context.Context, coll *Collection, entries []model.Entry) (int, error) {
	docs := entryDocuments(entries)
	if err := coll.Replace(ctx, docs); err != nil {
		return 0, fmt.Errorf("rebuilding collection %s: %w", coll.Name(), err)
	}
	return len(docs), nil
}

func entryDocuments(entries []model.Entry) []Document {
	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, Document{
			Text:     e.Techstack,
			Metadata: map[string]string{LinksKey: e.Links},
		})
	}
	return docs
}

// Links returns the links metadata of each match, in order.
// A match without links contributes an empty string.
func Links(matches []Match) []string {
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, m.Metadata[LinksKey])
	}
	return links
}
