package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/hasteapp/hastecore/internal/engine"
	"github.com/hasteapp/hastecore/pkg/types"
)

// EngineTestSuite exercises the engine facade end to end against a real
// database file.
type EngineTestSuite struct {
	suite.Suite
	eng *engine.Engine
	ctx context.Context
}

func (s *EngineTestSuite) SetupTest() {
	dir := s.T().TempDir()
	eng, err := engine.Open(filepath.Join(dir, "history.db"), filepath.Join(dir, "blobs"))
	s.Require().NoError(err)
	s.eng = eng
	s.ctx = context.Background()
}

func (s *EngineTestSuite) TearDownTest() {
	s.Require().NoError(s.eng.Close())
}

func (s *EngineTestSuite) text(content string, createdAt int64) *types.NewItem {
	return &types.NewItem{
		Kind:       types.KindText,
		ContentRef: content,
		CreatedAt:  createdAt,
	}
}

func (s *EngineTestSuite) ids(items []*types.Item) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// TestCaptureLifecycle walks the canonical flow: capture, re-copy,
// second capture, search, delete.
func (s *EngineTestSuite) TestCaptureLifecycle() {
	// Insert "hello world" at t=1000
	out, err := s.eng.DedupeInsert(s.ctx, s.text("hello world", 1000))
	s.Require().NoError(err)
	s.Equal(types.StatusInserted, out.Status)
	first := out.ID

	// Re-copy at t=2000 bumps the same row
	out, err = s.eng.DedupeInsert(s.ctx, s.text("hello world", 2000))
	s.Require().NoError(err)
	s.Equal(types.StatusTouched, out.Status)
	s.Equal(first, out.ID)

	item, err := s.eng.GetItem(s.ctx, first)
	s.Require().NoError(err)
	s.Equal(int64(2000), item.CreatedAt)

	// Second capture at t=3000
	out, err = s.eng.DedupeInsert(s.ctx, s.text("goodbye", 3000))
	s.Require().NoError(err)
	s.Equal(types.StatusInserted, out.Status)
	second := out.ID

	// Recency listing: newest first
	items, err := s.eng.Search(s.ctx, "", 10)
	s.Require().NoError(err)
	s.Equal([]int64{second, first}, s.ids(items))

	// Term search finds only the matching item
	items, err = s.eng.Search(s.ctx, "hello", 10)
	s.Require().NoError(err)
	s.Equal([]int64{first}, s.ids(items))

	// Delete is terminal
	s.Require().NoError(s.eng.DeleteItem(s.ctx, first))
	items, err = s.eng.Search(s.ctx, "hello", 10)
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *EngineTestSuite) TestRecencyOrderWithTies() {
	var want []int64
	for i := 0; i < 3; i++ {
		id, err := s.eng.AddItem(s.ctx, s.text("tied", 1000))
		s.Require().NoError(err)
		// Same timestamp: higher id (later insert) lists first
		want = append([]int64{id}, want...)
	}
	id, err := s.eng.AddItem(s.ctx, s.text("newest", 2000))
	s.Require().NoError(err)
	want = append([]int64{id}, want...)

	items, err := s.eng.Search(s.ctx, "", 3)
	s.Require().NoError(err)
	s.Equal(want[:3], s.ids(items), "limit caps the listing")
}

func (s *EngineTestSuite) TestPinSurvivesTouchAndClear() {
	out, err := s.eng.DedupeInsert(s.ctx, s.text("pinned note", 1000))
	s.Require().NoError(err)
	s.Require().NoError(s.eng.PinItem(s.ctx, out.ID, true))

	// Dedup touch keeps the pin
	touched, err := s.eng.DedupeInsert(s.ctx, s.text("pinned note", 2000))
	s.Require().NoError(err)
	s.Equal(types.StatusTouched, touched.Status)

	item, err := s.eng.GetItem(s.ctx, out.ID)
	s.Require().NoError(err)
	s.True(item.Pinned)

	// Clear removes everything else
	_, err = s.eng.AddItem(s.ctx, s.text("disposable", 3000))
	s.Require().NoError(err)
	deleted, err := s.eng.Clear(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, deleted)

	item, err = s.eng.GetItem(s.ctx, out.ID)
	s.Require().NoError(err)
	s.True(item.Pinned)

	// Explicit delete still removes a pinned item
	s.Require().NoError(s.eng.DeleteItem(s.ctx, out.ID))
	_, err = s.eng.GetItem(s.ctx, out.ID)
	s.ErrorIs(err, types.ErrNotFound)
}

func (s *EngineTestSuite) TestSearchNeverReturnsImageOrFile() {
	_, err := s.eng.AddItem(s.ctx, &types.NewItem{
		Kind: types.KindImage, ContentRef: "/blobs/report.png", CreatedAt: 1000,
	})
	s.Require().NoError(err)
	_, err = s.eng.AddItem(s.ctx, &types.NewItem{
		Kind: types.KindFile, ContentRef: "/docs/report.pdf", CreatedAt: 2000,
	})
	s.Require().NoError(err)
	textID, err := s.eng.AddItem(s.ctx, s.text("quarterly report", 3000))
	s.Require().NoError(err)

	for _, query := range []string{"report", "re", "blobs"} {
		items, err := s.eng.Search(s.ctx, query, 10)
		s.Require().NoError(err)
		for _, item := range items {
			s.True(item.Kind.Textual(), "query %q returned %s item", query, item.Kind)
		}
	}

	items, err := s.eng.Search(s.ctx, "report", 10)
	s.Require().NoError(err)
	s.Equal([]int64{textID}, s.ids(items))
}

func (s *EngineTestSuite) TestDeletedIDNeverReappears() {
	id, err := s.eng.AddItem(s.ctx, s.text("transient alpha", 1000))
	s.Require().NoError(err)
	s.Require().NoError(s.eng.DeleteItem(s.ctx, id))

	_, err = s.eng.GetItem(s.ctx, id)
	s.ErrorIs(err, types.ErrNotFound)

	// New inserts never reuse the id
	next, err := s.eng.AddItem(s.ctx, s.text("transient beta", 2000))
	s.Require().NoError(err)
	s.Greater(next, id)

	for _, query := range []string{"", "alpha", "transient"} {
		items, err := s.eng.Search(s.ctx, query, 10)
		s.Require().NoError(err)
		s.NotContains(s.ids(items), id)
	}
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
