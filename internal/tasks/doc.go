// Package tasks orchestrates vibe-to-playlist curation with real-time progress reporting.
//
// # Core Operations
//
// The [CurateEngine] interface defines two operations:
//
//  1. [CurateEngine.Curate] : Full vibe → playlist run
//     - Interprets the vibe text into a genre/energy/valence profile
//     - Generates artist/song suggestions from the profile
//     - Validates each suggestion against the Spotify catalog
//     - Unmatched suggestions widen the search through related genres,
//       and catalog matches feed back into another suggestion round
//     - Assembles the playlist with a share link
//
//  2. [CurateEngine.Publish] : Create the playlist on Spotify
//     - Requires user-level authentication on the service
//     - Replaces the search share link with the real playlist URL
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Playlist Caching
//
// The optional [PlaylistCacher] interface enables automatic persistence of
// assembled playlists. Caching errors are logged but never fail a run.
//
// # Implementation
//
// [VibeEngine] implements [CurateEngine] with dependencies on:
//   - [curator.Curator] : vibe interpretation and suggestion generation
//   - [services.Service] : Spotify catalog client
//   - [rate.Limiter] : shared limit across outbound search calls
package tasks
