package domain

import "encoding/json"

// StreamDescriptor décrit les flux lisibles d'un épisode.
//
// La forme reste celle du provider: un seul des champs est renseigné selon Provider,
// le client sait afficher chacune des variantes.
type StreamDescriptor struct {
	Provider  Provider          `json:"provider"`
	Hentai    []HentaiStream    `json:"hentai,omitempty"`
	Hianime   []json.RawMessage `json:"hianime,omitempty"`
	AnimeSama *AnimeSamaStreams `json:"animesama,omitempty"`
	VoirAnime json.RawMessage   `json:"voiranime,omitempty"`
}

// Empty vaut true quand aucune variante n'est exploitable.
func (d StreamDescriptor) Empty() bool {
	switch d.Provider {
	case ProviderHentai:
		return len(d.Hentai) == 0
	case ProviderHianime:
		return len(d.Hianime) == 0
	case ProviderAnimeSama:
		return d.AnimeSama == nil || (len(d.AnimeSama.VOSTFR) == 0 && len(d.AnimeSama.VF) == 0)
	case ProviderVoirAnimeVO, ProviderVoirAnimeVF:
		s := string(d.VoirAnime)
		return s == "" || s == "null" || s == "[]" || s == "{}"
	default:
		return true
	}
}
