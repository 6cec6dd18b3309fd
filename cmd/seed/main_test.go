package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtysite/internal/domain"
)

func TestDemoListingsDecode(t *testing.T) {
	props, err := loadListings(demoListings)
	require.NoError(t, err)
	require.NotEmpty(t, props)

	ids := map[string]bool{}
	for _, p := range props {
		assert.NotEmpty(t, p.Title, p.ID)
		assert.True(t, p.Purpose.IsValid(), p.ID)
		assert.NotEmpty(t, p.Gallery(), p.ID)
		assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
		ids[p.ID] = true
	}
	assert.Equal(t, domain.TagPremium, props[0].Tag)
}

func TestLoadListingsRejectsRowsWithoutID(t *testing.T) {
	_, err := loadListings([]byte(`[{"title":"sem id"}]`))
	assert.ErrorIs(t, err, domain.ErrInvalidRow)
}
