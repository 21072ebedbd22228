package catalog

// Author is a single artist.
type Author struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Song is a single track. AuthorID references Author.ID but is never enforced.
type Song struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	AuthorID int    `json:"authorId" yaml:"authorId"`
}

// Seed is the initial content of a store.
type Seed struct {
	Authors []Author `json:"authors" yaml:"authors"`
	Songs   []Song   `json:"songs" yaml:"songs"`
}

// DefaultSeed returns the records present at startup when no seed file is given.
func DefaultSeed() Seed {
	return Seed{
		Authors: []Author{
			{ID: 1, Name: "AC/DC"},
			{ID: 2, Name: "Black Sabath"},
			{ID: 3, Name: "Guns N' Roses"},
			{ID: 4, Name: "Rick astley"},
			{ID: 5, Name: "Ozzy Osbourne"},
		},
		Songs: []Song{
			{ID: 1, Name: "Back in Black", AuthorID: 1},
			{ID: 2, Name: "Highway To Hell", AuthorID: 1},
			{ID: 3, Name: "Thunderstruck", AuthorID: 1},
			{ID: 4, Name: "Paranoid", AuthorID: 2},
			{ID: 5, Name: "Iron Man", AuthorID: 2},
			{ID: 6, Name: "Welcome to the jungle", AuthorID: 3},
			{ID: 7, Name: "Paradise City", AuthorID: 3},
		},
	}
}
