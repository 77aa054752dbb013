// internal/models/user.go
package models

// UserPreferences carries the personalization signals for one user. A nil
// *UserPreferences means an anonymous searcher.
type UserPreferences struct {
	UserID         string         `json:"userId"`
	CategoryCounts map[string]int `json:"categoryCounts"`
	RecentSearches []string       `json:"recentSearches"`
}

func (p *UserPreferences) CategoryCount(category string) int {
	if p == nil || p.CategoryCounts == nil {
		return 0
	}
	return p.CategoryCounts[category]
}
