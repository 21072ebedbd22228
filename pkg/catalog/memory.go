package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// ErrDuplicateID is returned when seed data repeats an id within one collection.
var ErrDuplicateID = errors.New("duplicate id")

// MemoryStore is a thread-safe in-memory implementation of Store.
// Both sequences share one lock.
type MemoryStore struct {
	mu           sync.RWMutex
	authors      []Author
	songs        []Song
	nextAuthorID int
	nextSongID   int
}

// NewMemoryStore creates a MemoryStore holding a copy of seed.
// The id counters start after the highest seeded id of each collection.
func NewMemoryStore(seed Seed) (*MemoryStore, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}

	s := &MemoryStore{
		authors:      slices.Clone(seed.Authors),
		songs:        slices.Clone(seed.Songs),
		nextAuthorID: 1,
		nextSongID:   1,
	}
	if len(s.authors) > 0 {
		s.nextAuthorID = lo.MaxBy(s.authors, func(a, b Author) bool { return a.ID > b.ID }).ID + 1
	}
	if len(s.songs) > 0 {
		s.nextSongID = lo.MaxBy(s.songs, func(a, b Song) bool { return a.ID > b.ID }).ID + 1
	}
	return s, nil
}

// NewDefaultMemoryStore creates a MemoryStore holding DefaultSeed.
func NewDefaultMemoryStore() *MemoryStore {
	s, err := NewMemoryStore(DefaultSeed())
	if err != nil {
		// DefaultSeed has unique ids.
		panic(err)
	}
	return s
}

// Validate checks that ids are unique within each collection.
func (s Seed) Validate() error {
	if dups := lo.FindDuplicatesBy(s.Authors, func(a Author) int { return a.ID }); len(dups) > 0 {
		return fmt.Errorf("%w: author %d", ErrDuplicateID, dups[0].ID)
	}
	if dups := lo.FindDuplicatesBy(s.Songs, func(song Song) int { return song.ID }); len(dups) > 0 {
		return fmt.Errorf("%w: song %d", ErrDuplicateID, dups[0].ID)
	}
	return nil
}

// DanglingSongs returns the songs whose AuthorID matches no seeded author.
// They are allowed; the CLI only warns about them.
func (s Seed) DanglingSongs() []Song {
	ids := lo.SliceToMap(s.Authors, func(a Author) (int, struct{}) { return a.ID, struct{}{} })
	return lo.Filter(s.Songs, func(song Song, _ int) bool {
		_, ok := ids[song.AuthorID]
		return !ok
	})
}

// FindAuthor scans the author sequence for id.
func (s *MemoryStore) FindAuthor(ctx context.Context, id int) (Author, bool, error) {
	if err := ctx.Err(); err != nil {
		return Author{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := lo.Find(s.authors, func(a Author) bool { return a.ID == id })
	return a, ok, nil
}

// ListAuthors returns a copy of the author sequence. It is never nil.
func (s *MemoryStore) ListAuthors(ctx context.Context) ([]Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]Author, 0, len(s.authors)), s.authors...), nil
}

// AppendAuthor adds an author under the next author id.
func (s *MemoryStore) AppendAuthor(ctx context.Context, name string) (Author, error) {
	if err := ctx.Err(); err != nil {
		return Author{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := Author{ID: s.nextAuthorID, Name: name}
	s.nextAuthorID++
	s.authors = append(s.authors, a)
	return a, nil
}

// FindSong scans the song sequence for id.
func (s *MemoryStore) FindSong(ctx context.Context, id int) (Song, bool, error) {
	if err := ctx.Err(); err != nil {
		return Song{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	song, ok := lo.Find(s.songs, func(song Song) bool { return song.ID == id })
	return song, ok, nil
}

// ListSongs returns a copy of the song sequence. It is never nil.
func (s *MemoryStore) ListSongs(ctx context.Context) ([]Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]Song, 0, len(s.songs)), s.songs...), nil
}

// ListSongsByAuthor returns the songs referencing authorID.
func (s *MemoryStore) ListSongsByAuthor(ctx context.Context, authorID int) ([]Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.songs, func(song Song, _ int) bool { return song.AuthorID == authorID }), nil
}

// AppendSong adds a song under the next song id.
func (s *MemoryStore) AppendSong(ctx context.Context, name string, authorID int) (Song, error) {
	if err := ctx.Err(); err != nil {
		return Song{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	song := Song{ID: s.nextSongID, Name: name, AuthorID: authorID}
	s.nextSongID++
	s.songs = append(s.songs, song)
	return song, nil
}

// Counts returns the number of stored authors and songs.
func (s *MemoryStore) Counts() (authors, songs int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.authors), len(s.songs)
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
