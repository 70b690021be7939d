package domain

// Favorite reprend exactement ce que l'app mobile enregistre (id AniList, titres, couverture).
type Favorite struct {
	ID         int        `json:"id"`
	Title      Title      `json:"title"`
	CoverImage CoverImage `json:"coverImage"`
}

type CoverImage struct {
	Large  string `json:"large,omitempty"`
	Medium string `json:"medium,omitempty"`
}
