package preference

const (
	KeyFixtureFilters      = "fixtures-filters"
	KeySelectedCompetition = "selected-competition"
	KeyInsightFilters      = "ai-insights-filters"
	KeySearchHistory       = "search-history"
	KeySelectedTeams       = "selected-teams"
	KeyFavoriteTeams       = "favorite-teams"
	OfflinePrefix          = "offline_"
)

// ValidKey reports whether key may be stored. Keys are short printable names.
func ValidKey(key string) bool {
	if key == "" || len(key) > 128 {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
