package catalog

// SearchResultItem is one row of a catalog search.
type SearchResultItem struct {
	ID        string
	Title     string
	MediaType string
	Year      string
	PosterURL string
}

// DetailRecord is the full description of a single title.
type DetailRecord struct {
	ID             string
	Title          string
	Year           string
	PosterURL      string
	Runtime        string
	RuntimeMinutes int
	ExternalRating float64
	Plot           string
	Released       string
	Actors         string
	Director       string
	Genre          string
}

// IMDbURL returns the public title page for the record.
func (d *DetailRecord) IMDbURL() string {
	return TitleURL(d.ID)
}

func TitleURL(id string) string {
	return "https://www.imdb.com/title/" + id + "/"
}
