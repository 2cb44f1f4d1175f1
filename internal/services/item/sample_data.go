package item

import (
	"time"

	"github.com/google/uuid"

	"github.com/jantaller/swapta-api/internal/models"
)

// Статический демонстрационный набор объявлений. Остался со времен
// прототипа: старые ссылки на демо-объявления продолжают открываться,
// даже если строки в базе нет.
var (
	sampleOwnerID = uuid.MustParse("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")

	sampleOwner = models.UserInfo{
		ID:        sampleOwnerID,
		FullName:  "Janford Taller",
		Username:  "janford",
		AvatarURL: "https://ui-avatars.com/api/?name=Janford+Taller&background=random",
	}

	// Число обменов демонстрационного владельца
	sampleOwnerTrades = 12

	sampleListings = []models.Item{
		{
			ID:          uuid.MustParse("1c8f7a2e-5b7d-4bad-9bdd-2b0d7b3dcb6d"),
			OwnerID:     sampleOwnerID,
			Title:       "Vintage Camera",
			Description: "A classic 35mm film camera in great condition.",
			Category:    "Electronics",
			Condition:   "Good",
			Type:        models.ItemTypeItem,
			Location:    "Cebu City",
			Photos:      []string{"https://images.unsplash.com/photo-1516035069371-29a1b244cc32?w=500"},
			Status:      models.ItemStatusActive,
			CreatedAt:   time.Date(2025, time.November, 2, 9, 0, 0, 0, time.UTC),
			Owner:       &sampleOwner,
		},
	}
)

// findSampleListing ищет объявление в демонстрационном наборе
func findSampleListing(id uuid.UUID) *models.Item {
	for i := range sampleListings {
		if sampleListings[i].ID == id {
			return &sampleListings[i]
		}
	}
	return nil
}
