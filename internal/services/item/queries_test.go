package item

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFeedQueryFiltered(t *testing.T) {
	// Фильтр по типу ограничивает ленту активными объявлениями
	for _, itemType := range []string{"item", "looking_for"} {
		query, args := buildFeedQuery(itemType)

		assert.Contains(t, query, "i.type = $1")
		assert.Contains(t, query, "i.status = 'active'")
		assert.Contains(t, query, "ORDER BY i.created_at DESC")
		require.Len(t, args, 1)
		assert.Equal(t, itemType, args[0])
	}
}

func TestBuildFeedQueryAll(t *testing.T) {
	// Вид "все" не фильтрует по статусу: обменянные объявления
	// остаются видимыми
	for _, itemType := range []string{"", "all"} {
		query, args := buildFeedQuery(itemType)

		assert.NotContains(t, query, "WHERE")
		assert.NotContains(t, query, "status")
		assert.Contains(t, query, "ORDER BY i.created_at DESC")
		assert.Empty(t, args)
	}
}

func TestBuildFeedQueryJoinsOwner(t *testing.T) {
	query, _ := buildFeedQuery("all")
	assert.Contains(t, query, "JOIN profiles p ON p.id = i.owner_id")
	assert.True(t, strings.Contains(query, "p.full_name"))
}

func TestFindSampleListing(t *testing.T) {
	known := sampleListings[0].ID

	found := findSampleListing(known)
	require.NotNil(t, found)
	assert.Equal(t, "Vintage Camera", found.Title)
	require.NotNil(t, found.Owner)
	assert.Equal(t, sampleOwnerID, found.Owner.ID)

	assert.Nil(t, findSampleListing(uuid.New()))
}
