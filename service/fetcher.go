package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const devtoBase = "https://dev.to/api/articles"

// devtoClient has a short timeout so a slow upstream cannot stall a batch.
var devtoClient = &http.Client{Timeout: 15 * time.Second}

// FetchedArticle is the raw article shape the batch consumes. SourceID is
// the upstream post id used for ingest-once deduplication.
type FetchedArticle struct {
	SourceID    string
	Title       string
	Body        string
	URL         string
	Tags        []string
	PublishedAt time.Time
}

// ArticleFetcher supplies raw articles to the mention batch.
type ArticleFetcher interface {
	Fetch(ctx context.Context) ([]FetchedArticle, error)
}

// devtoListItem is one entry of GET /api/articles.
type devtoListItem struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	URL                string   `json:"url"`
	TagList            []string `json:"tag_list"`
	PublishedTimestamp string   `json:"published_timestamp"`
}

// devtoArticle is GET /api/articles/{id}; only the body field is read.
type devtoArticle struct {
	BodyMarkdown string `json:"body_markdown"`
}

// DevtoFetcher pulls recent posts for a set of tags from the dev.to API.
type DevtoFetcher struct {
	Tags    []string
	PerPage int
	Client  *http.Client
}

func NewDevtoFetcher(tags []string, perPage int) *DevtoFetcher {
	if perPage <= 0 {
		perPage = 30
	}
	return &DevtoFetcher{Tags: tags, PerPage: perPage, Client: devtoClient}
}

// Fetch lists recent articles per tag and loads each article's full body.
// A failed body load falls back to the listing's description and the fetch
// continues; a failed listing fails the whole fetch.
func (f *DevtoFetcher) Fetch(ctx context.Context) ([]FetchedArticle, error) {
	seen := make(map[string]bool)
	var out []FetchedArticle
	for _, tag := range f.Tags {
		items, err := f.list(ctx, tag)
		if err != nil {
			return nil, fmt.Errorf("fetch articles for tag %q: %w", tag, err)
		}
		for _, item := range items {
			sourceID := strconv.Itoa(item.ID)
			if seen[sourceID] {
				continue
			}
			seen[sourceID] = true

			body := item.Description
			if full, err := f.body(ctx, item.ID); err != nil {
				log.Printf("fetch: article %s body: %v (using description)", sourceID, err)
			} else if full != "" {
				body = full
			}

			publishedAt, err := time.Parse(time.RFC3339, item.PublishedTimestamp)
			if err != nil {
				publishedAt = time.Now()
			}
			out = append(out, FetchedArticle{
				SourceID:    sourceID,
				Title:       item.Title,
				Body:        body,
				URL:         item.URL,
				Tags:        item.TagList,
				PublishedAt: publishedAt,
			})
		}
	}
	return out, nil
}

func (f *DevtoFetcher) list(ctx context.Context, tag string) ([]devtoListItem, error) {
	q := url.Values{}
	q.Set("tag", strings.TrimSpace(tag))
	q.Set("per_page", strconv.Itoa(f.PerPage))
	var items []devtoListItem
	if err := f.getJSON(ctx, devtoBase+"?"+q.Encode(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (f *DevtoFetcher) body(ctx context.Context, id int) (string, error) {
	var article devtoArticle
	if err := f.getJSON(ctx, fmt.Sprintf("%s/%d", devtoBase, id), &article); err != nil {
		return "", err
	}
	return article.BodyMarkdown, nil
}

func (f *DevtoFetcher) getJSON(ctx context.Context, u string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dev.to returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
