package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRun_RoundTripsOptions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := Run{
		ID:             "run-opts",
		Crate:          "demo",
		EncoderVersion: "0.1.0",
		IVLVersion:     "1",
		Options:        map[string]any{"comments": true, "workers": 4},
		Procedures:     3,
	}
	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.ReadRun(ctx, "run-opts")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Crate)
	assert.Equal(t, 3, got.Procedures)
	assert.False(t, got.Finished)
	assert.Equal(t, true, got.Options["comments"])
	assert.Equal(t, json.Number("4"), got.Options["workers"])

	var stored string
	require.NoError(t, s.db.QueryRow("SELECT options FROM runs WHERE id = ?", "run-opts").Scan(&stored))
	assert.Equal(t, `{"comments":true,"workers":4}`, stored)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestRun(t, s, "run-1")
	dup := Run{ID: "run-1", Crate: "other", EncoderVersion: "x", IVLVersion: "y"}
	require.NoError(t, s.WriteRun(ctx, dup))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Crate, "first write wins")
}

func TestFinishRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestRun(t, s, "run-1")
	require.NoError(t, s.FinishRun(ctx, "run-1", 1, 1))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, got.Finished)
	assert.Equal(t, 1, got.Succeeded)
	assert.Equal(t, 1, got.Failed)

	err = s.FinishRun(ctx, "nope", 0, 0)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestWriteMethod_SharedAcrossRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestRun(t, s, "run-1")
	createTestRun(t, s, "run-2")

	m := Method{Def: "demo::add", BodyHash: "h1", Text: "method m_demo$$add() {}", Seq: 1}
	id1, err := s.WriteMethod(ctx, "run-1", m)
	require.NoError(t, err)
	id2, err := s.WriteMethod(ctx, "run-2", m)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM methods").Scan(&count))
	assert.Equal(t, 1, count)

	for _, run := range []string{"run-1", "run-2"} {
		methods, err := s.ReadMethods(ctx, run)
		require.NoError(t, err)
		require.Len(t, methods, 1)
		assert.Equal(t, id1, methods[0].ID)
	}
}

func TestReadMethods_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")

	for _, m := range []Method{
		{Def: "demo::c", BodyHash: "c", Text: "c", Seq: 3},
		{Def: "demo::a", BodyHash: "a", Text: "a", Seq: 1},
		{Def: "demo::b", BodyHash: "b", Text: "b", Seq: 2},
	} {
		_, err := s.WriteMethod(ctx, "run-1", m)
		require.NoError(t, err)
	}

	methods, err := s.ReadMethods(ctx, "run-1")
	require.NoError(t, err)
	var defs []string
	for _, m := range methods {
		defs = append(defs, m.Def)
	}
	assert.Equal(t, []string{"demo::a", "demo::b", "demo::c"}, defs)
}

func TestReadMethods_EmptyRun(t *testing.T) {
	s := createTestStore(t)
	createTestRun(t, s, "run-1")

	methods, err := s.ReadMethods(context.Background(), "run-1")
	require.NoError(t, err)
	assert.NotNil(t, methods)
	assert.Empty(t, methods)
}

func TestWriteEncodeError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")

	e := EncodeError{
		RunID:    "run-1",
		Seq:      2,
		Def:      "demo::asm",
		Class:    "unsupported",
		Code:     "E201",
		Message:  "inline assembly",
		Location: "bb0[0]",
	}
	id, err := s.WriteEncodeError(ctx, e)
	require.NoError(t, err)
	again, err := s.WriteEncodeError(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	errs, err := s.ReadErrors(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "E201", errs[0].Code)
	assert.Equal(t, "bb0[0]", errs[0].Location)
	assert.Equal(t, int64(2), errs[0].Seq)
}

func TestLatestRuns(t *testing.T) {
	s := createTestStore(t)
	createTestRun(t, s, "run-a")
	createTestRun(t, s, "run-b")
	createTestRun(t, s, "run-c")

	runs, err := s.LatestRuns(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)
}

func TestLatestMethod(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1")
	createTestRun(t, s, "run-2")

	_, ok, err := s.LatestMethod(ctx, "demo::f")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.WriteMethod(ctx, "run-1", Method{Def: "demo::f", BodyHash: "h", Text: "old", Seq: 1})
	require.NoError(t, err)
	_, err = s.WriteMethod(ctx, "run-2", Method{Def: "demo::f", BodyHash: "h", Text: "new", Seq: 1})
	require.NoError(t, err)

	m, ok, err := s.LatestMethod(ctx, "demo::f")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", m.Text)
}
