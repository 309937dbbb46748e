package model

import "github.com/google/uuid"

// DefaultCategories is the system-seeded category set. IDs are derived
// from the name so that re-seeding an existing ledger is idempotent.
func DefaultCategories() []Category {
	seed := []struct {
		name  string
		icon  string
		color string
	}{
		{"food", "fork.knife", "#FF6B6B"},
		{"housing", "house", "#4ECDC4"},
		{"transportation", "car", "#45B7D1"},
		{"entertainment", "tv", "#FFA07A"},
		{"utilities", "bolt", "#98D8C8"},
		{"healthcare", "cross.case", "#F7B731"},
		{"shopping", "bag", "#A29BFE"},
		{"education", "book", "#6C5CE7"},
		{"salary", "dollarsign.circle", "#00B894"},
		{"other", "ellipsis.circle", "#95A5A6"},
	}
	out := make([]Category, 0, len(seed))
	for _, s := range seed {
		out = append(out, Category{
			ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte("category:"+s.name)).String(),
			Name:      s.name,
			Icon:      s.icon,
			ColorHex:  s.color,
			IsDefault: true,
		})
	}
	return out
}
