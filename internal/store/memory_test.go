package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventoscl/crawler/internal/events"
)

func TestMemoryGatewayUpsertReplacesRow(t *testing.T) {
	t.Parallel()

	gw := NewMemoryGateway(fixedClock{t: time.Unix(1700000000, 0).UTC()})
	defer gw.Close()

	ctx := context.Background()

	first := events.EventRecord{ExternalID: "hamlet", Source: "puntoticket", Title: "Hamlet"}
	_, err := gw.Upsert(ctx, first)
	require.NoError(t, err)

	second := first
	second.Title = "Hamlet, Príncipe de Dinamarca"
	_, err = gw.Upsert(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, 1, gw.Len())
	got, ok := gw.Get("hamlet", "puntoticket")
	require.True(t, ok)
	assert.Equal(t, "Hamlet, Príncipe de Dinamarca", got.Title)
}

func TestMemoryGatewayLookupFiltersBySourceAndDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	gw := NewMemoryGateway(fixedClock{t: now})
	ctx := context.Background()

	upcoming := now.AddDate(0, 1, 0)
	past := now.AddDate(0, -1, 0)

	for _, rec := range []events.EventRecord{
		{ExternalID: "upcoming", Source: "puntoticket", StartDate: &upcoming},
		{ExternalID: "past", Source: "puntoticket", StartDate: &past},
		{ExternalID: "undated", Source: "puntoticket"},
		{ExternalID: "other-site", Source: "otherticket", StartDate: &upcoming},
	} {
		_, err := gw.Upsert(ctx, rec)
		require.NoError(t, err)
	}

	known, err := gw.LookupKnownExternalIDs(ctx, "puntoticket", now)
	require.NoError(t, err)

	// Past and undated rows stay invisible so their events get rescraped.
	assert.Equal(t, map[string]struct{}{"upcoming": {}}, known)
}
