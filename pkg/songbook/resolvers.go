package songbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/getmockd/songbook/pkg/catalog"
	"github.com/getmockd/songbook/pkg/graphql"
)

// NewResolvers builds the resolver table over store.
// Author and Song values flow through the executor as catalog.Author and catalog.Song.
func NewResolvers(store catalog.Store) graphql.Resolvers {
	q := &queries{store: store}
	r := graphql.Resolvers{}

	r.Set("Query", "song", q.song)
	r.Set("Query", "songs", q.songs)
	r.Set("Query", "author", q.author)
	r.Set("Query", "authors", q.authors)

	r.Set("Mutation", "addSong", q.addSong)
	r.Set("Mutation", "addAuthor", q.addAuthor)

	r.Set("Author", "id", authorField(func(a catalog.Author) interface{} { return a.ID }))
	r.Set("Author", "name", authorField(func(a catalog.Author) interface{} { return a.Name }))
	r.Set("Author", "songs", q.authorSongs)

	r.Set("Song", "id", songField(func(s catalog.Song) interface{} { return s.ID }))
	r.Set("Song", "name", songField(func(s catalog.Song) interface{} { return s.Name }))
	r.Set("Song", "authorId", songField(func(s catalog.Song) interface{} { return s.AuthorID }))
	r.Set("Song", "author", q.songAuthor)

	return r
}

type queries struct {
	store catalog.Store
}

func (q *queries) song(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
	id, ok, err := graphql.IntArg(p.Args, "id")
	if err != nil || !ok {
		return nil, err
	}
	s, found, err := q.store.FindSong(ctx, id)
	if err != nil || !found {
		return nil, err
	}
	return s, nil
}

// songs returns every song when the author filter is absent or empty. Otherwise
// a song matches when its author's name contains the filter; songs whose author
// does not exist never match.
func (q *queries) songs(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
	songs, err := q.store.ListSongs(ctx)
	if err != nil {
		return nil, err
	}
	filter, _ := graphql.StringArg(p.Args, "author")
	if filter == "" {
		return songs, nil
	}

	authors, err := q.store.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}
	matching := lo.SliceToMap(
		lo.Filter(authors, func(a catalog.Author, _ int) bool { return strings.Contains(a.Name, filter) }),
		func(a catalog.Author) (int, struct{}) { return a.ID, struct{}{} },
	)
	return lo.Filter(songs, func(s catalog.Song, _ int) bool {
		_, ok := matching[s.AuthorID]
		return ok
	}), nil
}

func (q *queries) author(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
	id, ok, err := graphql.IntArg(p.Args, "id")
	if err != nil || !ok {
		return nil, err
	}
	return q.findAuthor(ctx, id)
}

func (q *queries) authors(ctx context.Context, _ graphql.ResolveParams) (interface{}, error) {
	return q.store.ListAuthors(ctx)
}

func (q *queries) addSong(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
	name, _ := graphql.StringArg(p.Args, "name")
	authorID, _, err := graphql.IntArg(p.Args, "authorId")
	if err != nil {
		return nil, err
	}
	s, err := q.store.AppendSong(ctx, name, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to add song: %w", err)
	}
	return s, nil
}

func (q *queries) addAuthor(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
	name, _ := graphql.StringArg(p.Args, "name")
	a, err := q.store.AppendAuthor(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to add author: %w", err)
	}
	return a, nil
}

func (q *queries) authorSongs(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
	a, ok := p.Source.(catalog.Author)
	if !ok {
		return nil, nil
	}
	return q.store.ListSongsByAuthor(ctx, a.ID)
}

// songAuthor follows Song.authorId. The id argument is part of the schema for
// existing clients and is not read.
func (q *queries) songAuthor(ctx context.Context, p graphql.ResolveParams) (interface{}, error) {
	s, ok := p.Source.(catalog.Song)
	if !ok {
		return nil, nil
	}
	return q.findAuthor(ctx, s.AuthorID)
}

func (q *queries) findAuthor(ctx context.Context, id int) (interface{}, error) {
	a, found, err := q.store.FindAuthor(ctx, id)
	if err != nil || !found {
		return nil, err
	}
	return a, nil
}

func authorField(get func(catalog.Author) interface{}) graphql.ResolverFunc {
	return func(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
		a, ok := p.Source.(catalog.Author)
		if !ok {
			return nil, fmt.Errorf("unexpected Author source %T", p.Source)
		}
		return get(a), nil
	}
}

func songField(get func(catalog.Song) interface{}) graphql.ResolverFunc {
	return func(_ context.Context, p graphql.ResolveParams) (interface{}, error) {
		s, ok := p.Source.(catalog.Song)
		if !ok {
			return nil, fmt.Errorf("unexpected Song source %T", p.Source)
		}
		return get(s), nil
	}
}
