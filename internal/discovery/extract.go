package discovery

import (
	"sort"
	"strings"
)

// knownLanguages is ordered by how often the tracked titles ship in each
// language; it only matters for the priority fallback below.
var knownLanguages = []string{
	"English",
	"Hindi",
	"Tamil",
	"Telugu",
	"Kannada",
	"Malayalam",
	"Punjabi",
	"Gujarati",
	"Marathi",
	"Bengali",
	"Spanish",
}

// formatKeywords are premium-format amenity labels. The first keyword found in
// any amenity wins over the variant's own format name.
var formatKeywords = []string{
	"Superscreen DLX",
	"Ultrascreen DLX",
	"CINÉ XL®",
	"D-Box",
	"IMAX",
	"EMX",
	"FDX",
	"DFX",
	"4DX",
	"ACX",
	"PTX",
	"RPX",
	"EPEX",
	"Sony Digital Cinema",
	"Grand Screen",
	"ScreenX",
	"XL at AMC",
	"Premium Large Format",
	"Monster Screen®",
	"XD",
	"Dolby Cinema",
}

// extractLanguage picks the screening language from an amenity group. An
// amenity naming "<language> language" is authoritative; otherwise the language
// mentioned earliest inside any amenity wins.
func extractLanguage(amenities []string) string {
	type candidate struct {
		language string
		position int
	}

	var candidates []candidate

	for _, amenity := range amenities {
		lowered := strings.ToLower(amenity)
		for _, lang := range knownLanguages {
			lowerLang := strings.ToLower(lang)
			if strings.Contains(lowered, lowerLang+" language") {
				return lang
			}
			if idx := strings.Index(lowered, lowerLang); idx >= 0 {
				candidates = append(candidates, candidate{language: lang, position: idx})
			}
		}
	}

	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].position < candidates[j].position
		})
		return candidates[0].language
	}

	return "Unknown"
}

// extractFormat returns the first premium-format keyword present in the
// amenities, falling back to the variant's own format name.
func extractFormat(amenities []string, defaultFormat string) string {
	for _, keyword := range formatKeywords {
		lowerKeyword := strings.ToLower(keyword)
		for _, amenity := range amenities {
			if strings.Contains(strings.ToLower(amenity), lowerKeyword) {
				return keyword
			}
		}
	}

	return defaultFormat
}
