// Package store buffers decoded PCM per speaker.
//
// Every user id heard during a recording session owns one append-only
// Track. A track is backed either by an in-memory buffer or by a
// temporary file at
//
//	<working_dir>/.rectmps/<guild_id>.<user_id>.tmp
//
// The temporary directory is created lazily on the first file-mode write.
// Silence is padded with zeroed PCM so that every track stays aligned to
// the session timeline; a speaker's leading silence is recorded on the
// track instead and applied at export.
//
// A Store is safe for concurrent use. After Finalize it becomes a
// read-only snapshot: writes fail with ErrStoreFinalized, reads and
// deletions remain available to the export pipeline.
package store
