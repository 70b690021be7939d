package app

// AdultGenre est le tag de genre AniList qui bascule la résolution sur le provider hentai.
const AdultGenre = "Hentai"

// IsAdultContent vaut true ssi la liste de genres contient exactement AdultGenre.
func IsAdultContent(genres []string) bool {
	for _, g := range genres {
		if g == AdultGenre {
			return true
		}
	}
	return false
}
