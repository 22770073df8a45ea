// Package models defines domain entities and persistence interfaces for the playlist generator.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs passed between layers
//   - [VibeProfile] : The model's interpretation of a vibe description
//   - [Suggestion] : A curator-proposed artist/song pair
//   - [Track] : A resolved Spotify track
//   - [Playlist] : An assembled curation result
//   - [TrainingExample] : One labeled entry from the training data file
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PlaylistRecord] : Curation history entries
//   - [TrackRecord] : Tracks belonging to a history entry
//
// All persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
