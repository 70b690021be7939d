package domain

// CommonEpisode est le modèle d'épisode normalisé, identique quel que soit le provider.
//
// ID n'est jamais vide: c'est la seule poignée dont le client dispose pour demander la lecture.
type CommonEpisode struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	EpisodeNumber string `json:"episodeNumber,omitempty"`
	JapaneseTitle string `json:"japaneseTitle,omitempty"`
	Slug          string `json:"slug,omitempty"`
}

// EpisodeList est le résultat d'une résolution. Episodes n'est jamais nil.
type EpisodeList struct {
	Episodes []CommonEpisode `json:"episodes"`
	Found    bool            `json:"found"`
}

func NotFound() EpisodeList {
	return EpisodeList{Episodes: []CommonEpisode{}, Found: false}
}

func FoundEpisodes(eps []CommonEpisode) EpisodeList {
	if len(eps) == 0 {
		return NotFound()
	}
	return EpisodeList{Episodes: eps, Found: true}
}
