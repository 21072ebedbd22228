// Package catalog holds the songbook records and the repositories that serve them.
//
// Two record kinds exist:
//
//   - Author: an artist with a sequential integer id and a name
//   - Song: a track with a sequential integer id, a name and the id of its author
//
// The AuthorRepository and SongRepository interfaces expose find, list and append
// operations. Store composes both so resolvers depend on a single value.
//
// MemoryStore is the default Store. It keeps both sequences in insertion order behind
// one lock and assigns ids from per-collection counters, so ids never depend on the
// current length of a sequence. A song's author id is not checked against the author
// sequence.
//
// Seed data can come from DefaultSeed or from a YAML file:
//
//	authors:
//	  - id: 1
//	    name: AC/DC
//	songs:
//	  - id: 1
//	    name: Back in Black
//	    authorId: 1
package catalog
