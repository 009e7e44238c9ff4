package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stackshelf/backend/models"
	"github.com/stackshelf/backend/service"
	"github.com/stackshelf/backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultPageSize = 50

type BooksHandler struct {
	DB *store.DB
}

// List serves GET /api/books?status=&category=&page=&perPage=.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !contains(models.ValidBookStatuses, status) {
		http.Error(w, `{"error":"invalid status"}`, http.StatusBadRequest)
		return
	}
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "perPage", defaultPageSize)
	if perPage > 200 {
		perPage = 200
	}
	books, err := h.DB.ListBooks(r.Context(), status, r.URL.Query().Get("category"),
		int64((page-1)*perPage), int64(perPage))
	if err != nil {
		http.Error(w, `{"error":"failed to list books"}`, http.StatusInternalServerError)
		return
	}
	if books == nil {
		books = []models.Book{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(books)
}

func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	if book == nil {
		http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

// MentionDetail is one mention joined with the article it came from.
type MentionDetail struct {
	models.Mention
	ArticleTitle string `json:"articleTitle,omitempty"`
	ArticleURL   string `json:"articleUrl,omitempty"`
}

// Mentions serves GET /api/books/{id}/mentions: the book's mention history,
// oldest first, with the source article's title and link when it still
// exists.
func (h *BooksHandler) Mentions(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	mentions, err := h.DB.MentionsForBook(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"failed to load mentions"}`, http.StatusInternalServerError)
		return
	}
	details := make([]MentionDetail, 0, len(mentions))
	for _, m := range mentions {
		detail := MentionDetail{Mention: m}
		if article, err := h.DB.ArticleByID(r.Context(), m.ArticleID); err == nil && article != nil {
			detail.ArticleTitle = article.Title
			detail.ArticleURL = article.URL
		}
		details = append(details, detail)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}

type CreateBookRequest struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	ISBN       string   `json:"isbn"`
	URL        string   `json:"url"`
	Categories []string `json:"categories"`
}

// Create serves POST /api/books (admin). When an ISBN is given without a
// title, metadata is looked up to fill title, author, categories, and cover.
// Mention stats always start at zero; the API never accepts them.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	book := &models.Book{
		Title:      strings.TrimSpace(req.Title),
		Author:     strings.TrimSpace(req.Author),
		ISBN:       strings.TrimSpace(req.ISBN),
		URL:        strings.TrimSpace(req.URL),
		Categories: req.Categories,
		Status:     models.BookStatusActive,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if book.Title == "" && book.ISBN != "" {
		meta, err := service.FetchMetadataByISBN(book.ISBN)
		if err != nil {
			http.Error(w, `{"error":"failed to fetch metadata: `+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		book.Title = meta.Title
		book.CoverURL = meta.CoverURL
		if book.Author == "" {
			book.Author = meta.Author
		}
		if len(book.Categories) == 0 {
			book.Categories = meta.Categories
		}
	}
	if book.Title == "" {
		http.Error(w, `{"error":"title or isbn required"}`, http.StatusBadRequest)
		return
	}
	book.NormalizedTitle = service.Normalize(book.Title)

	// Reject duplicates of an already-cataloged title.
	existing, err := h.DB.BookByNormalizedTitle(r.Context(), book.NormalizedTitle)
	if err != nil {
		http.Error(w, `{"error":"failed to create book"}`, http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, `{"error":"a book with this title already exists"}`, http.StatusConflict)
		return
	}

	id, err := h.DB.InsertBook(r.Context(), book)
	if err != nil {
		http.Error(w, `{"error":"failed to create book"}`, http.StatusInternalServerError)
		return
	}
	book.ID = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(book)
}

type PatchStatusRequest struct {
	Status string `json:"status"`
}

// PatchStatus serves PATCH /api/books/{id}/status (admin). Inactive and
// merged books disappear from the title index at the next batch and from
// rankings at the next regeneration.
func (h *BooksHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid book id"}`, http.StatusBadRequest)
		return
	}
	var req PatchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if !contains(models.ValidBookStatuses, req.Status) {
		http.Error(w, `{"error":"invalid status"}`, http.StatusBadRequest)
		return
	}
	if err := h.DB.UpdateBookStatus(r.Context(), id, req.Status); err != nil {
		http.Error(w, `{"error":"book not found"}`, http.StatusNotFound)
		return
	}
	book, err := h.DB.BookByID(r.Context(), id)
	if err != nil || book == nil {
		http.Error(w, `{"error":"failed to load book"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
