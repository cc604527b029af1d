package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventoscl/crawler/internal/events"
)

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()

	placeholders := []string{
		"",
		"https://cdn.example.com/img/placeholder.png",
		"https://cdn.example.com/no-image.jpg",
		"https://cdn.example.com/assets/spinner.gif",
		"https://cdn.example.com/1x1.gif",
		"https://www.puntoticket.com/images/ico-ticket.png",
		"https://www.puntoticket.com/content/landing-2021/banner.jpg",
		"https://www.puntoticket.com/images/logo.svg",
		"https://www.puntoticket.com/social/facebook.svg",
	}
	for _, url := range placeholders {
		assert.True(t, IsPlaceholder(url), "url %q", url)
	}

	real := []string{
		"https://cdn.ptocdn.net/eventos/los-bunkers.jpg",
		"https://cdn.example.com/afiche-principal.png",
	}
	for _, url := range real {
		assert.False(t, IsPlaceholder(url), "url %q", url)
	}
}

func TestRankOrdersByPriorityThenArea(t *testing.T) {
	t.Parallel()

	candidates := []events.ImageCandidate{
		{URL: "https://cdn.example.com/fallback.jpg", Priority: 3, Width: 2000, Height: 2000},
		{URL: "https://cdn.ptocdn.net/eventos/thumb.jpg", Priority: 2, Width: 100, Height: 100},
		{URL: "https://cdn.ptocdn.net/eventos/grande.jpg", Priority: 2, Width: 800, Height: 600},
		{URL: "https://cdn.example.com/og.jpg", Priority: 1, Width: 10, Height: 10},
	}

	ranked := Rank(candidates)
	require.Len(t, ranked, 4)
	// Provenance outranks size: a tiny og:image still wins.
	assert.Equal(t, "https://cdn.example.com/og.jpg", ranked[0].URL)
	assert.Equal(t, "https://cdn.ptocdn.net/eventos/grande.jpg", ranked[1].URL)
	assert.Equal(t, "https://cdn.ptocdn.net/eventos/thumb.jpg", ranked[2].URL)
	assert.Equal(t, "https://cdn.example.com/fallback.jpg", ranked[3].URL)
}

func TestRankDropsPlaceholders(t *testing.T) {
	t.Parallel()

	candidates := []events.ImageCandidate{
		{URL: "https://cdn.example.com/placeholder.png", Priority: 1},
		{URL: "https://cdn.ptocdn.net/eventos/afiche.jpg", Priority: 2},
		{URL: "", Priority: 1},
	}

	ranked := Rank(candidates)
	require.Len(t, ranked, 1)
	assert.Equal(t, "https://cdn.ptocdn.net/eventos/afiche.jpg", ranked[0].URL)
}

func TestRankTreatsMissingDimensionsAsZeroArea(t *testing.T) {
	t.Parallel()

	candidates := []events.ImageCandidate{
		{URL: "https://cdn.example.com/sin-medidas.jpg", Priority: 2},
		{URL: "https://cdn.example.com/con-medidas.jpg", Priority: 2, Width: 50, Height: 50},
	}

	ranked := Rank(candidates)
	require.Len(t, ranked, 2)
	assert.Equal(t, "https://cdn.example.com/con-medidas.jpg", ranked[0].URL)
}

func TestSelectBest(t *testing.T) {
	t.Parallel()

	best := SelectBest([]events.ImageCandidate{
		{URL: "https://cdn.example.com/no-image.jpg", Priority: 1},
		{URL: "https://cdn.ptocdn.net/eventos/afiche.jpg", Priority: 2},
	})
	require.NotNil(t, best)
	assert.Equal(t, "https://cdn.ptocdn.net/eventos/afiche.jpg", best.URL)
}

func TestSelectBestAllPlaceholders(t *testing.T) {
	t.Parallel()

	best := SelectBest([]events.ImageCandidate{
		{URL: "https://cdn.example.com/placeholder.png"},
		{URL: ""},
	})
	assert.Nil(t, best)
}
