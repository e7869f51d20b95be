package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// notAvailable is the catalog's placeholder for missing fields.
const notAvailable = "N/A"

type searchPayload struct {
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		ID     string `json:"imdbID"`
		Type   string `json:"Type"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

type detailPayload struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	IMDbRating string `json:"imdbRating"`
	ID         string `json:"imdbID"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// ParseSearch decodes a search response body.
func ParseSearch(r io.Reader) ([]SearchResultItem, error) {
	var payload searchPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", ErrTransport, err)
	}
	if strings.EqualFold(payload.Response, "False") {
		return nil, notFound(payload.Error)
	}

	items := make([]SearchResultItem, 0, len(payload.Search))
	for _, s := range payload.Search {
		items = append(items, SearchResultItem{
			ID:        s.ID,
			Title:     s.Title,
			MediaType: s.Type,
			Year:      s.Year,
			PosterURL: cleanField(s.Poster),
		})
	}
	return items, nil
}

// ParseDetail decodes a detail response body. id is used when the payload
// omits its own identifier.
func ParseDetail(r io.Reader, id string) (*DetailRecord, error) {
	var payload detailPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding detail response: %v", ErrTransport, err)
	}
	if strings.EqualFold(payload.Response, "False") {
		return nil, notFound(payload.Error)
	}

	if payload.ID != "" {
		id = payload.ID
	}
	return &DetailRecord{
		ID:             id,
		Title:          payload.Title,
		Year:           payload.Year,
		PosterURL:      cleanField(payload.Poster),
		Runtime:        cleanField(payload.Runtime),
		RuntimeMinutes: ParseRuntime(payload.Runtime),
		ExternalRating: ParseRating(payload.IMDbRating),
		Plot:           cleanField(payload.Plot),
		Released:       cleanField(payload.Released),
		Actors:         cleanField(payload.Actors),
		Director:       cleanField(payload.Director),
		Genre:          cleanField(payload.Genre),
	}, nil
}

func notFound(reason string) error {
	if reason == "" {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s", ErrNotFound, reason)
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if s == notAvailable {
		return ""
	}
	return s
}

// ParseRuntime reads the leading integer of values like "148 min".
// Anything unparseable yields 0.
func ParseRuntime(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseRating reads a decimal rating such as "8.8". Anything unparseable
// yields 0.
func ParseRating(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == notAvailable {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
