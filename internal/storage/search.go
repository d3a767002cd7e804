package storage

import (
	"context"
	"strings"
	"unicode"

	"github.com/hasteapp/hastecore/pkg/types"
)

// shortQueryLimit is the query length (in runes) below which FTS5 prefix
// matching degrades to noise; shorter queries use a substring scan instead.
const shortQueryLimit = 3

// SearchItems answers a ranked text query over the indexed kinds.
// Results are ordered best-match-first by BM25, ties broken by recency
// then id. Queries shorter than three runes fall back to a recency-ordered
// substring scan restricted to the same kinds.
func (s *Store) SearchItems(ctx context.Context, query string, limit int, kinds []types.Kind) ([]*types.Item, error) {
	if len([]rune(query)) < shortQueryLimit {
		return s.searchSubstring(ctx, query, limit, kinds)
	}

	match := buildMatchQuery(query)
	if match == "" {
		return s.searchSubstring(ctx, query, limit, kinds)
	}

	if len(kinds) == 0 {
		return []*types.Item{}, nil
	}

	placeholders := make([]string, len(kinds))
	args := make([]interface{}, 0, len(kinds)+2)
	args = append(args, match)
	for i, k := range kinds {
		placeholders[i] = "?"
		args = append(args, string(k))
	}
	args = append(args, limit)

	// The kind filter must live here too, not just in the fallback: the
	// FTS table can hold rows for kinds that are no longer indexed.
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.kind, i.content_ref, i.source_app, i.created_at, i.pinned, i.tags
		FROM items_fts f
		INNER JOIN items i ON i.id = f.item_id
		WHERE items_fts MATCH ?
		  AND i.kind IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY bm25(items_fts), i.created_at DESC, i.id DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, storageErr("execute full-text search", err)
	}
	defer func() { _ = rows.Close() }()

	return collectItems(rows)
}

// searchSubstring is the short-query path: a recency-ordered scan over the
// content of the indexed kinds. Matching folds both the query and the
// content with FoldForMatch, so diacritics compare the way the FTS
// tokenizer folds them; SQLite's lower() is ASCII-only, which would leave
// a folded query unable to match unfolded content.
func (s *Store) searchSubstring(ctx context.Context, query string, limit int, kinds []types.Kind) ([]*types.Item, error) {
	if len(kinds) == 0 {
		return []*types.Item{}, nil
	}

	placeholders := make([]string, len(kinds))
	args := make([]interface{}, 0, len(kinds))
	for i, k := range kinds {
		placeholders[i] = "?"
		args = append(args, string(k))
	}
	needle := types.FoldForMatch(query)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, content_ref, source_app, created_at, pinned, tags
		FROM items
		WHERE kind IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY created_at DESC, id DESC
	`, args...)
	if err != nil {
		return nil, storageErr("execute substring search", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*types.Item, 0, limit)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		if !strings.Contains(types.FoldForMatch(item.ContentRef), needle) {
			continue
		}
		items = append(items, item)
		if len(items) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate substring search", err)
	}
	return items, nil
}

// buildMatchQuery turns raw user input into a safe FTS5 MATCH expression.
// Each whitespace-separated token becomes a quoted prefix term ("tok"*),
// which gives live-typing prefix matching and neutralizes FTS5 operators
// (AND, OR, NOT, NEAR, parentheses, column filters) in the input.
func buildMatchQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	terms := make([]string, 0, len(fields))
	for _, tok := range fields {
		// punctuation-only tokens produce empty phrases, which FTS5 rejects
		if !strings.ContainsFunc(tok, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			continue
		}
		// FTS5 escapes embedded quotes by doubling them
		escaped := strings.ReplaceAll(tok, `"`, `""`)
		terms = append(terms, `"`+escaped+`"*`)
	}
	return strings.Join(terms, " ")
}
