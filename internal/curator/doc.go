// Package curator implements vibe interpretation and suggestion generation.
//
// Training fits a TF-IDF vectorizer and three random forests (a genre
// classifier plus energy and valence regressors) on labeled vibe examples,
// persisted together as a gob-encoded [Bundle]. At inference time a [Curator]
// maps a free-text vibe description to a [models.VibeProfile] and produces
// artist/song suggestions for the search layer, refining them with catalog
// feedback when a second pass is requested.
package curator
