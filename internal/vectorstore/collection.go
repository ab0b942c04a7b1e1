package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/amishk599/coldreach/internal/model"
)

// Document is a unit of text stored in a collection.
type Document struct {
	ID       string // generated when empty
	Text     string
	Metadata map[string]string
}

// Match is a document returned by Query together with its similarity score.
type Match struct {
	ID       string
	Text     string
	Metadata map[string]string
	Score    float32
}

// Collection is a named group of embedded documents.
type Collection struct {
	db       *sql.DB
	embedder model.Embedder
	id       int64
	name     string
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Count returns the number of documents in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings WHERE collection_id = ?", c.id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting collection %s: %w", c.name, err)
	}
	return n, nil
}

// Add embeds and stores docs. A document whose ID already exists replaces the
// stored text and metadata but keeps its original position.
// Nothing is written unless every document embeds successfully.
func (c *Collection) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	rows, err := c.embedDocuments(ctx, docs)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert into %s: %w", c.name, err)
	}
	defer tx.Rollback()

	if err := c.insertRows(ctx, tx, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert into %s: %w", c.name, err)
	}
	return nil
}

// Replace swaps the collection's contents for docs in one transaction.
// Every document is embedded before anything is deleted, so a failure leaves
// the previous contents in place.
func (c *Collection) Replace(ctx context.Context, docs []Document) error {
	rows, err := c.embedDocuments(ctx, docs)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning replace of %s: %w", c.name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings WHERE collection_id = ?", c.id); err != nil {
		return fmt.Errorf("clearing collection %s: %w", c.name, err)
	}
	if err := c.insertRows(ctx, tx, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing replace of %s: %w", c.name, err)
	}
	return nil
}

// embeddedRow is a document ready to be written.
type embeddedRow struct {
	id       string
	text     string
	metadata []byte
	vector   []byte
}

func (c *Collection) embedDocuments(ctx context.Context, docs []Document) ([]embeddedRow, error) {
	rows := make([]embeddedRow, 0, len(docs))
	for _, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		meta := d.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("encoding metadata for %s: %w", id, err)
		}
		vec, err := c.embedder.Embed(ctx, d.Text)
		if err != nil {
			return nil, fmt.Errorf("embedding document %s: %w", id, err)
		}
		rows = append(rows, embeddedRow{id: id, text: d.Text, metadata: metaJSON, vector: encodeVector(vec)})
	}
	return rows, nil
}

func (c *Collection) insertRows(ctx context.Context, tx *sql.Tx, rows []embeddedRow) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO embeddings (id, collection_id, document, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection_id, id) DO UPDATE SET
			document = excluded.document,
			metadata = excluded.metadata,
			embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %w", c.name, err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.id, c.id, r.text, string(r.metadata), r.vector); err != nil {
			return fmt.Errorf("inserting document %s: %w", r.id, err)
		}
	}
	return nil
}

// Query embeds text and returns up to n documents ranked by cosine similarity.
// Equal scores keep insertion order.
func (c *Collection) Query(ctx context.Context, text string, n int) ([]Match, error) {
	if n <= 0 {
		return nil, nil
	}

	qvec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx,
		"SELECT id, document, metadata, embedding FROM embeddings WHERE collection_id = ? ORDER BY seq", c.id)
	if err != nil {
		return nil, fmt.Errorf("reading collection %s: %w", c.name, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m        Match
			metaJSON string
			blob     []byte
		)
		if err := rows.Scan(&m.ID, &m.Text, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning collection %s: %w", c.name, err)
		}
		if err := json.Unmarshal([]byte(metaJSON), &m.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for %s: %w", m.ID, err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding embedding for %s: %w", m.ID, err)
		}
		m.Score = cosineSimilarity(qvec, vec)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading collection %s: %w", c.name, err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if n < len(matches) {
		matches = matches[:n]
	}
	return matches, nil
}
