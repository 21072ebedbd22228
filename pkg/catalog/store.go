package catalog

import "context"

// AuthorRepository reads and appends authors.
type AuthorRepository interface {
	// FindAuthor returns the author with the given id. The bool is false when no
	// author matches; that is not an error.
	FindAuthor(ctx context.Context, id int) (Author, bool, error)
	// ListAuthors returns all authors in insertion order.
	ListAuthors(ctx context.Context) ([]Author, error)
	// AppendAuthor stores a new author under the next id and returns it.
	AppendAuthor(ctx context.Context, name string) (Author, error)
}

// SongRepository reads and appends songs.
type SongRepository interface {
	// FindSong returns the song with the given id. The bool is false when no song
	// matches; that is not an error.
	FindSong(ctx context.Context, id int) (Song, bool, error)
	// ListSongs returns all songs in insertion order.
	ListSongs(ctx context.Context) ([]Song, error)
	// ListSongsByAuthor returns the songs whose AuthorID equals authorID, in insertion order.
	ListSongsByAuthor(ctx context.Context, authorID int) ([]Song, error)
	// AppendSong stores a new song under the next id and returns it.
	// authorID is stored as given.
	AppendSong(ctx context.Context, name string, authorID int) (Song, error)
}

// Store is the full repository used by the resolver layer.
type Store interface {
	AuthorRepository
	SongRepository
}
