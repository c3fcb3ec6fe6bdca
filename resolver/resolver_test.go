package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/entitydesk/core"
	"github.com/hupe1980/entitydesk/internal/testutil"
)

func TestCodeBase(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Summer Campaign", "SC"},
		{"Black Friday Push", "BP"},
		{"newsletter", "NE"},
		{"X", "XX"},
		{"summer campaign", "SC"},
		{"Café Münze", "CM"},
		{"", "XX"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CodeBase(tt.name), "name %q", tt.name)
	}
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode("SC1"))
	assert.True(t, IsCode("sc12"))
	assert.False(t, IsCode("SC"))
	assert.False(t, IsCode("S1"))
	assert.False(t, IsCode("Summer"))
	assert.False(t, IsCode("SC1 s"))
}

func TestAssignCodeSequencesPerBase(t *testing.T) {
	ctx := context.Background()
	dir := testutil.NewDirectory().Seed(
		core.BusinessEntity{ID: "ent-1", DisplayName: "Summer Campaign", ShortCode: "SC1", OwnerAgentID: "ag-1"},
		core.BusinessEntity{ID: "ent-2", DisplayName: "Spring Cleanup", ShortCode: "SC2", OwnerAgentID: "ag-1"},
		core.BusinessEntity{ID: "ent-3", DisplayName: "Newsletter", ShortCode: "NE1", OwnerAgentID: "ag-1"},
	)
	r := New(dir)

	code, err := r.AssignCode(ctx, "ag-1", "Sales Conference")
	require.NoError(t, err)
	assert.Equal(t, "SC3", code, "next code is max(existing)+1 for the base")

	code, err = r.AssignCode(ctx, "ag-1", "Big Launch")
	require.NoError(t, err)
	assert.Equal(t, "BL1", code, "fresh base starts at 1")
}

func TestAssignCodeIsPerAgent(t *testing.T) {
	ctx := context.Background()
	dir := testutil.NewDirectory().Seed(
		core.BusinessEntity{ID: "ent-1", DisplayName: "Summer Campaign", ShortCode: "SC1", OwnerAgentID: "ag-1"},
	)
	r := New(dir)

	code, err := r.AssignCode(ctx, "ag-2", "Spring Cleanup")
	require.NoError(t, err)
	assert.Equal(t, "SC1", code, "sequences do not leak across agents")
}

func TestResolveByCode(t *testing.T) {
	ctx := context.Background()
	dir := testutil.NewDirectory().Seed(
		core.BusinessEntity{ID: "ent-1", DisplayName: "Summer Campaign", ShortCode: "SC1", OwnerAgentID: "ag-1"},
	)
	r := New(dir)

	matches, err := r.Resolve(ctx, "ag-1", "SC1")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "ent-1", matches[0].ID)

	matches, err = r.Resolve(ctx, "ag-1", "sc1")
	require.NoError(t, err)
	assert.Len(t, matches, 1, "code lookup is case-insensitive")

	matches, err = r.Resolve(ctx, "ag-1", "ZZ9")
	require.NoError(t, err)
	assert.Empty(t, matches, "unknown code resolves to nothing, not an error")
}

func TestResolveByNameSubstring(t *testing.T) {
	ctx := context.Background()
	dir := testutil.NewDirectory().Seed(
		core.BusinessEntity{ID: "ent-1", DisplayName: "Sample Campaign", ShortCode: "SC1", OwnerAgentID: "ag-1"},
		core.BusinessEntity{ID: "ent-2", DisplayName: "Sam's Budget", ShortCode: "SB1", OwnerAgentID: "ag-1"},
		core.BusinessEntity{ID: "ent-3", DisplayName: "Newsletter", ShortCode: "NE1", OwnerAgentID: "ag-1"},
	)
	r := New(dir)

	matches, err := r.Resolve(ctx, "ag-1", "Sam")
	require.NoError(t, err)
	assert.Len(t, matches, 2, "ambiguous references return every match")

	matches, err = r.Resolve(ctx, "ag-1", "news")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "ent-3", matches[0].ID)
}

func TestBackfillAssignsMissingCodesOnly(t *testing.T) {
	ctx := context.Background()
	dir := testutil.NewDirectory().Seed(
		core.BusinessEntity{ID: "ent-1", DisplayName: "Summer Campaign", ShortCode: "SC1", OwnerAgentID: "ag-1"},
		core.BusinessEntity{ID: "ent-2", DisplayName: "Spring Cleanup", OwnerAgentID: "ag-1"},
		core.BusinessEntity{ID: "ent-3", DisplayName: "Social Club", OwnerAgentID: "ag-1"},
		core.BusinessEntity{ID: "ent-4", DisplayName: "Newsletter", OwnerAgentID: "ag-1"},
	)
	r := New(dir)

	require.NoError(t, r.Backfill(ctx, "ag-1"))

	e1, err := dir.Get(ctx, "ag-1", "ent-1")
	require.NoError(t, err)
	assert.Equal(t, "SC1", e1.ShortCode, "existing code is untouched")

	e2, err := dir.Get(ctx, "ag-1", "ent-2")
	require.NoError(t, err)
	assert.Equal(t, "SC2", e2.ShortCode)

	e3, err := dir.Get(ctx, "ag-1", "ent-3")
	require.NoError(t, err)
	assert.Equal(t, "SC3", e3.ShortCode, "same-run assignments do not collide")

	e4, err := dir.Get(ctx, "ag-1", "ent-4")
	require.NoError(t, err)
	assert.Equal(t, "NE1", e4.ShortCode)

	// A second run finds nothing to do and changes nothing.
	require.NoError(t, r.Backfill(ctx, "ag-1"))
	e2again, err := dir.Get(ctx, "ag-1", "ent-2")
	require.NoError(t, err)
	assert.Equal(t, "SC2", e2again.ShortCode)
}
