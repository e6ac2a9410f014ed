// Package books provides database operations for the book catalogue,
// including free-text search, filtered advanced search and autocomplete
// suggestions.
package books

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/maplewood/library/internal/database"
	"github.com/maplewood/library/internal/entities"
)

const (
	// MaxSearchResults caps advanced-search pagination.
	MaxSearchResults     = 100
	defaultSearchResults = 50

	// minSuggestionLength keeps autocomplete from scanning the whole
	// catalogue on one-character input.
	minSuggestionLength = 2

	suggestionsPerKind = 5
)

// sortColumns whitelists identifiers that may be interpolated into ORDER BY.
// Anything else silently falls back to the default column.
var sortColumns = map[string]string{
	"title":            "title",
	"author":           "author",
	"category":         "category",
	"publication_year": "publication_year",
	"copies_available": "copies_available",
}

// Filters describes an advanced catalogue search. Zero values mean "not
// filtered". All values are bound as parameters; only SortBy/SortOrder are
// interpolated, after whitelist validation.
type Filters struct {
	Search       string
	Category     string
	Author       string
	Publisher    string
	YearFrom     int
	YearTo       int
	Availability string // "available" or "borrowed"
	SortBy       string
	SortOrder    string
	Limit        int
	Offset       int
}

// Suggestions groups autocomplete matches by column.
type Suggestions struct {
	Titles     []string `json:"titles"`
	Authors    []string `json:"authors"`
	Categories []string `json:"categories"`
}

// FilterOptions lists the distinct values the advanced-search form can
// filter on.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Authors    []string `json:"authors"`
	Publishers []string `json:"publishers"`
	YearRange  struct {
		Min int `json:"min"`
		Max int `json:"max"`
	} `json:"year_range"`
}

// Repository handles book catalogue database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("title ASC").Find(&books).Error
	return books, err
}

func (r *Repository) FindByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *Repository) FindByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("isbn = ?", isbn).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Create inserts a new book and returns its id. A duplicate ISBN surfaces as
// database.ErrDuplicateISBN.
func (r *Repository) Create(book *entities.Book) (uint, error) {
	var existing entities.Book
	err := r.db.Where("isbn = ?", book.ISBN).First(&existing).Error
	if err == nil {
		return 0, database.ErrDuplicateISBN
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if err := r.db.Create(book).Error; err != nil {
		return 0, fmt.Errorf("failed to create book: %w", err)
	}
	return book.ID, nil
}

// Update replaces the editable fields of a book.
func (r *Repository) Update(id uint, book *entities.Book) error {
	var existing entities.Book
	err := r.db.Where("isbn = ? AND id <> ?", book.ISBN, id).First(&existing).Error
	if err == nil {
		return database.ErrDuplicateISBN
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(map[string]any{
		"isbn":             book.ISBN,
		"title":            book.Title,
		"author":           book.Author,
		"publisher":        book.Publisher,
		"category":         book.Category,
		"publication_year": book.PublicationYear,
		"copies_available": book.CopiesAvailable,
		"total_copies":     book.TotalCopies,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a book; loan history goes with it via ON DELETE CASCADE.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Search matches books by title, author, ISBN or category
// (case-insensitive partial match).
func (r *Repository) Search(query string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + query + "%"
	err := r.db.
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?) OR LOWER(isbn) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?)",
			pattern, pattern, pattern, pattern).
		Order("title ASC").
		Find(&books).Error
	return books, err
}

// AdvancedSearch applies optional filters, sorting and pagination.
func (r *Repository) AdvancedSearch(filters Filters) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{})

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where(
			"LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?) OR LOWER(isbn) LIKE LOWER(?) OR LOWER(category) LIKE LOWER(?) OR LOWER(publisher) LIKE LOWER(?)",
			pattern, pattern, pattern, pattern, pattern)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Author != "" {
		query = query.Where("author = ?", filters.Author)
	}
	if filters.Publisher != "" {
		query = query.Where("publisher = ?", filters.Publisher)
	}
	if filters.YearFrom > 0 {
		query = query.Where("publication_year >= ?", filters.YearFrom)
	}
	if filters.YearTo > 0 {
		query = query.Where("publication_year <= ?", filters.YearTo)
	}
	switch filters.Availability {
	case "available":
		query = query.Where("copies_available > 0")
	case "borrowed":
		query = query.Where("copies_available = 0")
	}

	query = query.Order(orderClause(filters.SortBy, filters.SortOrder))

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultSearchResults
	}
	if limit > MaxSearchResults {
		limit = MaxSearchResults
	}
	query = query.Limit(limit)
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var books []entities.Book
	err := query.Find(&books).Error
	return books, err
}

// orderClause builds a safe ORDER BY fragment. Unknown columns and
// directions fall back to title ascending rather than erroring.
func orderClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[strings.ToLower(sortBy)]
	if !ok {
		column = "title"
	}
	direction := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		direction = "DESC"
	}
	return column + " " + direction
}

// Suggestions returns autocomplete candidates for the given prefix. Queries
// shorter than two characters return an empty set without touching storage.
func (r *Repository) Suggestions(query string) (*Suggestions, error) {
	s := &Suggestions{
		Titles:     []string{},
		Authors:    []string{},
		Categories: []string{},
	}
	if len(query) < minSuggestionLength {
		return s, nil
	}

	pattern := query + "%"
	err := r.db.Model(&entities.Book{}).Distinct("title").
		Where("LOWER(title) LIKE LOWER(?)", pattern).
		Order("title ASC").Limit(suggestionsPerKind).
		Pluck("title", &s.Titles).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&entities.Book{}).Distinct("author").
		Where("LOWER(author) LIKE LOWER(?)", pattern).
		Order("author ASC").Limit(suggestionsPerKind).
		Pluck("author", &s.Authors).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&entities.Book{}).Distinct("category").
		Where("LOWER(category) LIKE LOWER(?)", pattern).
		Order("category ASC").Limit(suggestionsPerKind).
		Pluck("category", &s.Categories).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FilterOptions lists the distinct filterable values currently in the
// catalogue.
func (r *Repository) FilterOptions() (*FilterOptions, error) {
	opts := &FilterOptions{
		Categories: []string{},
		Authors:    []string{},
		Publishers: []string{},
	}

	err := r.db.Model(&entities.Book{}).Distinct("category").
		Where("category <> ''").Order("category ASC").
		Pluck("category", &opts.Categories).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&entities.Book{}).Distinct("author").
		Where("author <> ''").Order("author ASC").
		Pluck("author", &opts.Authors).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&entities.Book{}).Distinct("publisher").
		Where("publisher <> ''").Order("publisher ASC").
		Pluck("publisher", &opts.Publishers).Error
	if err != nil {
		return nil, err
	}

	row := struct {
		Min int
		Max int
	}{}
	err = r.db.Model(&entities.Book{}).
		Select("COALESCE(MIN(publication_year), 0) AS min, COALESCE(MAX(publication_year), 0) AS max").
		Where("publication_year > 0").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	opts.YearRange.Min = row.Min
	opts.YearRange.Max = row.Max

	return opts, nil
}
