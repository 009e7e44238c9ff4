package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleBooksBase = "https://www.googleapis.com/books/v1/volumes"

var googleBooksClient = &http.Client{Timeout: 15 * time.Second}

// googleBooksVolumesResp is the response from GET /volumes?q=isbn:...
type googleBooksVolumesResp struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title      string   `json:"title"`
			Subtitle   string   `json:"subtitle"`
			Authors    []string `json:"authors"`
			Categories []string `json:"categories"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// BookMetadata is what the catalog admin flow fills in from an ISBN lookup.
type BookMetadata struct {
	Title      string
	Author     string
	Categories []string
	CoverURL   string
}

// FetchMetadataByISBN looks a book up on Google Books and returns the fields
// the catalog stores. Covers come from Open Library, which serves images by
// ISBN without rate-limited tokens.
func FetchMetadataByISBN(isbn string) (*BookMetadata, error) {
	isbn = strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if isbn == "" {
		return nil, fmt.Errorf("isbn is required")
	}
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	resp, err := googleBooksClient.Get(googleBooksBase + "?" + q.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books returned %d", resp.StatusCode)
	}
	var data googleBooksVolumesResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, fmt.Errorf("no volume found for isbn %s", isbn)
	}
	vi := data.Items[0].VolumeInfo
	meta := &BookMetadata{
		Title:      vi.Title,
		Categories: vi.Categories,
		CoverURL:   "https://covers.openlibrary.org/b/isbn/" + url.PathEscape(isbn) + "-L.jpg",
	}
	if vi.Subtitle != "" {
		meta.Title = meta.Title + ": " + vi.Subtitle
	}
	if len(vi.Authors) > 0 {
		meta.Author = vi.Authors[0]
	}
	return meta, nil
}
