package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maplewood/library/internal/database/books"
	"github.com/maplewood/library/internal/entities"
)

// BookStore defines database operations for the book catalogue.
type BookStore interface {
	FindAll() ([]entities.Book, error)
	FindByID(id uint) (*entities.Book, error)
	Create(book *entities.Book) (uint, error)
	Update(id uint, book *entities.Book) error
	Delete(id uint) error
	Search(query string) ([]entities.Book, error)
	AdvancedSearch(filters books.Filters) ([]entities.Book, error)
	Suggestions(query string) (*books.Suggestions, error)
	FilterOptions() (*books.FilterOptions, error)
}

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

// bookRequest is the payload for creating and updating books.
type bookRequest struct {
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Publisher       string `json:"publisher"`
	Category        string `json:"category"`
	PublicationYear int    `json:"publication_year"`
	CopiesAvailable *int   `json:"copies_available"`
	TotalCopies     *int   `json:"total_copies"`
}

// toEntity fills defaults (single copy) and reports whether the copy counts
// respect 0 <= copies_available <= total_copies.
func (req bookRequest) toEntity() (*entities.Book, bool) {
	copiesAvailable := 1
	totalCopies := 1
	if req.TotalCopies != nil {
		totalCopies = *req.TotalCopies
	}
	if req.CopiesAvailable != nil {
		copiesAvailable = *req.CopiesAvailable
	} else {
		copiesAvailable = totalCopies
	}

	if totalCopies < 1 || copiesAvailable < 0 || copiesAvailable > totalCopies {
		return nil, false
	}

	return &entities.Book{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Author:          req.Author,
		Publisher:       req.Publisher,
		Category:        req.Category,
		PublicationYear: req.PublicationYear,
		CopiesAvailable: copiesAvailable,
		TotalCopies:     totalCopies,
	}, true
}

// GetAllBooks returns the whole catalogue.
// GET /api/books
func (bc *BooksController) GetAllBooks(c *gin.Context) {
	allBooks, err := bc.store.FindAll()
	if err != nil {
		respondInternalError(c, err, "get all books")
		return
	}
	c.JSON(http.StatusOK, allBooks)
}

// GetBook returns a single book.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.FindByID(id)
	if err != nil {
		respondRepositoryError(c, err, "Book", "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// SearchBooks matches the catalogue against a free-text query.
// GET /api/books/search?q=
func (bc *BooksController) SearchBooks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "Search query is required")
		return
	}

	results, err := bc.store.Search(query)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}
	c.JSON(http.StatusOK, results)
}

// AdvancedSearch applies optional filters, sorting and pagination.
// GET /api/books/advanced-search
func (bc *BooksController) AdvancedSearch(c *gin.Context) {
	filters := books.Filters{
		Search:       c.Query("search"),
		Category:     c.Query("category"),
		Author:       c.Query("author"),
		Publisher:    c.Query("publisher"),
		YearFrom:     parseIntQuery(c, "yearFrom"),
		YearTo:       parseIntQuery(c, "yearTo"),
		Availability: c.Query("availability"),
		SortBy:       c.DefaultQuery("sortBy", "title"),
		SortOrder:    c.DefaultQuery("sortOrder", "asc"),
		Limit:        parseIntQuery(c, "limit"),
		Offset:       parseIntQuery(c, "offset"),
	}

	results, err := bc.store.AdvancedSearch(filters)
	if err != nil {
		respondInternalError(c, err, "advanced search")
		return
	}
	c.JSON(http.StatusOK, results)
}

// GetSuggestions returns autocomplete candidates. Queries shorter than two
// characters yield empty suggestion lists.
// GET /api/books/suggestions?q=
func (bc *BooksController) GetSuggestions(c *gin.Context) {
	suggestions, err := bc.store.Suggestions(c.Query("q"))
	if err != nil {
		respondInternalError(c, err, "book suggestions")
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// GetFilterOptions lists values for the advanced-search form.
// GET /api/books/filter-options
func (bc *BooksController) GetFilterOptions(c *gin.Context) {
	options, err := bc.store.FilterOptions()
	if err != nil {
		respondInternalError(c, err, "book filter options")
		return
	}
	c.JSON(http.StatusOK, options)
}

// CreateBook adds a book to the catalogue.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.ISBN == "" || req.Title == "" || req.Author == "" || req.Category == "" {
		respondBadRequest(c, "Missing required fields")
		return
	}

	book, ok := req.toEntity()
	if !ok {
		respondBadRequest(c, "Copy counts must satisfy 0 <= copies_available <= total_copies")
		return
	}

	id, err := bc.store.Create(book)
	if err != nil {
		respondRepositoryError(c, err, "Book", "create book")
		return
	}
	respondCreated(c, id, "Book created successfully")
}

// UpdateBook replaces a book's fields.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.ISBN == "" || req.Title == "" || req.Author == "" || req.Category == "" {
		respondBadRequest(c, "Missing required fields")
		return
	}

	book, valid := req.toEntity()
	if !valid {
		respondBadRequest(c, "Copy counts must satisfy 0 <= copies_available <= total_copies")
		return
	}

	if err := bc.store.Update(id, book); err != nil {
		respondRepositoryError(c, err, "Book", "update book")
		return
	}
	respondMessage(c, "Book updated successfully")
}

// DeleteBook removes a book and its loan history.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.Delete(id); err != nil {
		respondRepositoryError(c, err, "Book", "delete book")
		return
	}
	respondMessage(c, "Book deleted successfully")
}

// parseIntQuery reads an optional non-negative integer query parameter,
// treating junk as absent.
func parseIntQuery(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 0 {
		return 0
	}
	return value
}
