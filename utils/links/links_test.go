package links

import "testing"

func TestLinks(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"imdb", IMDb("tt1375666"), "https://www.imdb.com/title/tt1375666/"},
		{"wikipedia with year", Wikipedia("Inception", "2010"), "https://en.wikipedia.org/w/index.php?search=Inception%20%282010%29"},
		{"wikipedia without year", Wikipedia("Inception", ""), "https://en.wikipedia.org/w/index.php?search=Inception"},
		{"rotten tomatoes", RottenTomatoes("Fast & Furious"), "https://www.rottentomatoes.com/search?search=Fast%20%26%20Furious"},
		{"metacritic", Metacritic("The Matrix"), "https://www.metacritic.com/search/The%20Matrix/"},
		{"trailer", Trailer("Dune", "2021"), "https://www.youtube.com/results?search_query=Dune%202021%20official%20trailer"},
		{"trailer without year", Trailer("Dune", ""), "https://www.youtube.com/results?search_query=Dune%20official%20trailer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
