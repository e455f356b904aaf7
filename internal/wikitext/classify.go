package wikitext

import "strings"

// Structural markers every song page carries.
const (
	IndexBackLink  = "[[Liste des chansons existantes|Retour à la liste des chansons]]"
	LyricsMarker   = "Paroles"
	DatesMarker    = "Dates de sortie"
	NotYetProposed = "Chanson non proposée"
)

var requiredMarkers = []string{IndexBackLink, LyricsMarker, DatesMarker}

// IsSongPage reports whether text is a song page that was actually used on
// the show. Pages flagged as not yet proposed are rejected whatever else
// they contain.
func IsSongPage(text string) bool {
	if strings.Contains(text, NotYetProposed) {
		return false
	}
	for _, marker := range requiredMarkers {
		if !strings.Contains(text, marker) {
			return false
		}
	}
	return true
}
