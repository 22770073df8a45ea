// The curation logic mirrors a DJ's workflow: interpret the vibe, propose
// artist/song pairs, then fold in catalog feedback from the search layer.
package curator

import (
	"fmt"
	"strings"

	"github.com/Nishad-30/vibelist-ai/internal/models"
	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/charmbracelet/log"
)

// genreMapping expands a predicted primary genre into related search genres.
// Doubles as the static substitution table for the collaborative retry loop.
var genreMapping = map[string][]string{
	"electronic": {"electronic", "techno", "house", "ambient", "downtempo"},
	"rock":       {"rock", "alternative rock", "indie rock", "classic rock"},
	"pop":        {"pop", "indie pop", "synth-pop", "electropop"},
	"jazz":       {"jazz", "smooth jazz", "contemporary jazz", "nu jazz"},
	"classical":  {"classical", "orchestral", "chamber music", "piano"},
	"hip-hop":    {"hip hop", "rap", "trap", "old school hip hop"},
	"indie":      {"indie", "indie folk", "indie rock", "indie pop"},
	"ambient":    {"ambient", "drone", "dark ambient", "space ambient"},
	"lo-fi":      {"lo-fi", "chillhop", "lo-fi hip hop", "bedroom pop"},
	"folk":       {"folk", "acoustic", "singer-songwriter", "americana"},
	"r&b":        {"r&b", "soul", "neo soul", "contemporary r&b"},
	"dance":      {"dance", "edm", "house", "trance", "disco"},
}

// genreArtists is the curated artist knowledge used for base suggestions.
var genreArtists = map[string][]string{
	"electronic": {"Daft Punk", "Aphex Twin", "Boards of Canada", "Tycho"},
	"rock":       {"The Beatles", "Led Zeppelin", "Radiohead", "Arctic Monkeys"},
	"jazz":       {"Miles Davis", "John Coltrane", "Bill Evans", "Herbie Hancock"},
	"ambient":    {"Brian Eno", "Stars of the Lid", "Tim Hecker", "Grouper"},
	"lo-fi":      {"Nujabes", "J Dilla", "Emancipator", "Bonobo"},
	"pop":        {"The Weeknd", "Billie Eilish", "Taylor Swift", "Dua Lipa"},
	"hip-hop":    {"Kendrick Lamar", "J. Cole", "Tyler, The Creator", "Mac Miller"},
	"indie":      {"Tame Impala", "Arctic Monkeys", "The Strokes", "Vampire Weekend"},
}

var (
	energyWords  = []string{"Slow", "Gentle", "Moderate", "Energetic", "Intense"}
	valenceWords = []string{"Blue", "Calm", "Neutral", "Bright", "Euphoric"}
)

const (
	maxExpandedGenres  = 5
	maxCharacteristics = 6
	suggestionGenres   = 3
	artistsPerGenre    = 2
	feedbackSource     = "spotify_feedback"
	feedbackGenre      = "spotify_suggested"
)

// Curator interprets vibe descriptions and generates song suggestions.
// A nil bundle is valid: interpretation falls back to keyword rules.
type Curator struct {
	bundle *Bundle
	logger *log.Logger
}

// New creates a Curator, loading the model bundle from modelPath. A missing
// model is not an error; the curator degrades to rule-based interpretation.
func New(modelPath string, logger *log.Logger) *Curator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	c := &Curator{logger: logger}

	bundle, err := LoadBundle(modelPath)
	if err != nil {
		logger.Warn("model unavailable, using rule-based interpretation", "path", modelPath, "err", err)
		return c
	}

	c.bundle = bundle
	logger.Info("curator model loaded", "classes", len(bundle.Classes), "features", bundle.Vectorizer.NumFeatures())
	return c
}

// NewWithBundle creates a Curator around an already loaded bundle.
func NewWithBundle(bundle *Bundle, logger *log.Logger) *Curator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Curator{bundle: bundle, logger: logger}
}

// ModelLoaded reports whether a trained model backs interpretation.
func (c *Curator) ModelLoaded() bool { return c.bundle != nil }

// InterpretVibe maps a free-text vibe description to a [models.VibeProfile].
// With a trained model: TF-IDF vectorize, predict genre/energy/valence, clamp
// predictions into [0,1]. Without one: keyword rules.
func (c *Curator) InterpretVibe(vibe string) models.VibeProfile {
	if c.bundle == nil {
		return fallbackInterpretation(vibe)
	}

	features := c.bundle.Vectorizer.Transform(vibe)
	genre := c.bundle.ClassName(c.bundle.GenreForest.PredictClass(features))
	energy := shared.Clamp01(c.bundle.EnergyForest.PredictValue(features))
	valence := shared.Clamp01(c.bundle.ValenceForest.PredictValue(features))

	return models.VibeProfile{
		Genres:          expandGenres(genre),
		Energy:          energy,
		Valence:         valence,
		Tempo:           energyToTempo(energy),
		Characteristics: deriveCharacteristics(vibe, energy, valence),
	}
}

// Suggest generates song suggestions for a profile, capped at size. Feedback
// lines ("Artist - Song") from the search layer are converted to
// high-confidence suggestions and placed ahead of the base list.
func (c *Curator) Suggest(profile models.VibeProfile, feedback []string, size int) []models.Suggestion {
	if size <= 0 {
		size = 20
	}

	base := c.baseSuggestions(profile)

	var suggestions []models.Suggestion
	if len(feedback) > 0 {
		suggestions = append(refineWithFeedback(feedback, profile), base...)
	} else {
		suggestions = base
	}

	if len(suggestions) > size {
		suggestions = suggestions[:size]
	}
	return suggestions
}

// RelatedGenres returns substitution genres for the retry loop, excluding the
// genre itself.
func RelatedGenres(genre string) []string {
	related, ok := genreMapping[genre]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(related))
	for _, g := range related {
		if g != genre {
			out = append(out, g)
		}
	}
	return out
}

// baseSuggestions builds suggestions from the curated artist table for the
// profile's top genres.
func (c *Curator) baseSuggestions(profile models.VibeProfile) []models.Suggestion {
	genres := profile.Genres
	if len(genres) > suggestionGenres {
		genres = genres[:suggestionGenres]
	}

	var suggestions []models.Suggestion
	for _, genre := range genres {
		artists, ok := genreArtists[genre]
		if !ok {
			artists = []string{genre + " artist"}
		}
		if len(artists) > artistsPerGenre {
			artists = artists[:artistsPerGenre]
		}

		for _, artist := range artists {
			suggestions = append(suggestions, models.Suggestion{
				Artist:     artist,
				Song:       songTitle(genre, profile.Energy, profile.Valence),
				Genre:      genre,
				Energy:     profile.Energy,
				Valence:    profile.Valence,
				Confidence: 0.8,
			})
		}
	}

	return suggestions
}

// songTitle synthesizes a search seed title from the energy/valence ladders.
func songTitle(genre string, energy, valence float64) string {
	energyIdx := int(energy * 5)
	if energyIdx > 4 {
		energyIdx = 4
	}
	valenceIdx := int(valence * 5)
	if valenceIdx > 4 {
		valenceIdx = 4
	}
	return fmt.Sprintf("%s %s %s", energyWords[energyIdx], valenceWords[valenceIdx], titleCase(genre))
}

// refineWithFeedback converts "Artist - Song" feedback lines from the search
// layer into higher-confidence suggestions.
func refineWithFeedback(feedback []string, profile models.VibeProfile) []models.Suggestion {
	var refined []models.Suggestion
	for _, line := range feedback {
		artist, song, found := strings.Cut(line, " - ")
		if !found {
			continue
		}
		refined = append(refined, models.Suggestion{
			Artist:     strings.TrimSpace(artist),
			Song:       strings.TrimSpace(song),
			Genre:      feedbackGenre,
			Energy:     profile.Energy,
			Valence:    profile.Valence,
			Confidence: 0.9,
			Source:     feedbackSource,
		})
	}
	return refined
}

// expandGenres widens a primary genre prediction via the mapping table,
// deduplicated in insertion order and capped.
func expandGenres(primary string) []string {
	var expanded []string
	seen := make(map[string]struct{})

	add := func(g string) {
		if _, ok := seen[g]; ok {
			return
		}
		seen[g] = struct{}{}
		expanded = append(expanded, g)
	}

	for _, word := range strings.Fields(primary) {
		if related, ok := genreMapping[word]; ok {
			for _, g := range related {
				add(g)
			}
		} else {
			add(word)
		}
	}

	if len(expanded) > maxExpandedGenres {
		expanded = expanded[:maxExpandedGenres]
	}
	return expanded
}

func energyToTempo(energy float64) string {
	switch {
	case energy < 0.3:
		return "slow"
	case energy < 0.6:
		return "medium"
	default:
		return "fast"
	}
}

// deriveCharacteristics derives descriptive tags from predicted values and
// the vibe's keyword context, capped and deduplicated in insertion order.
func deriveCharacteristics(vibe string, energy, valence float64) []string {
	var characteristics []string
	seen := make(map[string]struct{})

	add := func(tags ...string) {
		for _, t := range tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			characteristics = append(characteristics, t)
		}
	}

	switch {
	case energy < 0.3:
		add("calm", "peaceful", "relaxed")
	case energy > 0.7:
		add("energetic", "upbeat", "dynamic")
	default:
		add("moderate", "balanced")
	}

	switch {
	case valence < 0.3:
		add("melancholy", "introspective", "emotional")
	case valence > 0.7:
		add("happy", "uplifting", "positive")
	default:
		add("neutral", "contemplative")
	}

	lower := strings.ToLower(vibe)
	if containsAny(lower, "focus", "study", "work", "coding") {
		add("focus", "concentration", "minimal")
	}
	if containsAny(lower, "party", "dance", "workout") {
		add("danceable", "motivational")
	}
	if containsAny(lower, "romantic", "dinner", "date") {
		add("romantic", "intimate", "smooth")
	}

	if len(characteristics) > maxCharacteristics {
		characteristics = characteristics[:maxCharacteristics]
	}
	return characteristics
}

// fallbackInterpretation is the rule-based path when no model is loaded.
func fallbackInterpretation(vibe string) models.VibeProfile {
	lower := strings.ToLower(vibe)

	switch {
	case containsAny(lower, "energetic", "workout", "party", "upbeat"):
		return models.VibeProfile{
			Genres:          []string{"pop", "dance", "electronic"},
			Energy:          0.8,
			Valence:         0.7,
			Tempo:           "fast",
			Characteristics: []string{"energetic", "upbeat", "danceable"},
		}
	case containsAny(lower, "calm", "relax", "chill", "ambient"):
		return models.VibeProfile{
			Genres:          []string{"ambient", "lo-fi", "acoustic"},
			Energy:          0.3,
			Valence:         0.5,
			Tempo:           "slow",
			Characteristics: []string{"calm", "peaceful", "relaxed"},
		}
	default:
		return models.VibeProfile{
			Genres:          []string{"indie", "alternative", "pop"},
			Energy:          0.5,
			Valence:         0.5,
			Tempo:           "medium",
			Characteristics: []string{"balanced", "moderate"},
		}
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// titleCase uppercases the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
