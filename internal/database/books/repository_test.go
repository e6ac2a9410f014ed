package books

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/maplewood/library/internal/database"
	"github.com/maplewood/library/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Member{},
		&entities.Book{},
		&entities.BookLoan{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func seedCatalogue(t *testing.T, repo *Repository) {
	t.Helper()
	for _, book := range []entities.Book{
		{ISBN: "9780141439518", Title: "Pride and Prejudice", Author: "Jane Austen", Publisher: "Penguin Classics", Category: "Fiction", PublicationYear: 1813, CopiesAvailable: 3, TotalCopies: 3},
		{ISBN: "9780547928227", Title: "The Hobbit", Author: "J.R.R. Tolkien", Publisher: "Houghton Mifflin", Category: "Fantasy", PublicationYear: 1937, CopiesAvailable: 4, TotalCopies: 4},
		{ISBN: "9781451673319", Title: "Fahrenheit 451", Author: "Ray Bradbury", Publisher: "Simon & Schuster", Category: "Science Fiction", PublicationYear: 1953, CopiesAvailable: 0, TotalCopies: 2},
	} {
		b := book
		_, err := repo.Create(&b)
		require.NoError(t, err)
	}
}

func TestRepository_Create(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{
		ISBN: "9780451524935", Title: "1984", Author: "George Orwell",
		Category: "Fiction", CopiesAvailable: 2, TotalCopies: 2,
	}
	id, err := repo.Create(book)

	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, book.ID)
}

func TestRepository_Create_DuplicateISBN(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	first := &entities.Book{ISBN: "9780451524935", Title: "1984", Author: "George Orwell", Category: "Fiction", CopiesAvailable: 1, TotalCopies: 1}
	_, err := repo.Create(first)
	require.NoError(t, err)

	dup := &entities.Book{ISBN: "9780451524935", Title: "Nineteen Eighty-Four", Author: "George Orwell", Category: "Fiction", CopiesAvailable: 1, TotalCopies: 1}
	_, err = repo.Create(dup)
	assert.ErrorIs(t, err, database.ErrDuplicateISBN)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.FindByID(999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_FindByISBN(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	book, err := repo.FindByISBN("9780547928227")
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", book.Title)
}

func TestRepository_Update(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{ISBN: "9780451524935", Title: "1984", Author: "George Orwell", Category: "Fiction", CopiesAvailable: 1, TotalCopies: 1}
	id, err := repo.Create(book)
	require.NoError(t, err)

	book.Publisher = "Signet Classic"
	book.TotalCopies = 3
	book.CopiesAvailable = 3
	err = repo.Update(id, book)
	require.NoError(t, err)

	updated, err := repo.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Signet Classic", updated.Publisher)
	assert.Equal(t, 3, updated.TotalCopies)
}

func TestRepository_Update_ISBNTakenByOtherBook(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	hobbit, err := repo.FindByISBN("9780547928227")
	require.NoError(t, err)

	hobbit.ISBN = "9780141439518" // already Pride and Prejudice's
	err = repo.Update(hobbit.ID, hobbit)
	assert.ErrorIs(t, err, database.ErrDuplicateISBN)
}

func TestRepository_Update_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{ISBN: "9780451524935", Title: "1984", Author: "George Orwell", Category: "Fiction"}
	err := repo.Update(999, book)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	book, err := repo.FindByISBN("9780141439518")
	require.NoError(t, err)

	err = repo.Delete(book.ID)
	require.NoError(t, err)

	_, err = repo.FindByID(book.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Delete_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Delete(999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Delete_CascadesLoans(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	book, err := repo.FindByISBN("9780141439518")
	require.NoError(t, err)

	member := entities.Member{Name: "John Doe", Email: "john.doe@email.com"}
	require.NoError(t, db.Create(&member).Error)
	loan := entities.BookLoan{
		BookID: book.ID, MemberID: member.ID,
		BorrowDate: time.Now(), DueDate: time.Now().AddDate(0, 0, 14),
		Status: entities.LoanStatusReturned,
	}
	require.NoError(t, db.Create(&loan).Error)

	require.NoError(t, repo.Delete(book.ID))

	var loanCount int64
	require.NoError(t, db.Model(&entities.BookLoan{}).Where("book_id = ?", book.ID).Count(&loanCount).Error)
	assert.Zero(t, loanCount)

	// The borrower is untouched.
	var memberCount int64
	require.NoError(t, db.Model(&entities.Member{}).Where("id = ?", member.ID).Count(&memberCount).Error)
	assert.EqualValues(t, 1, memberCount)
}

func TestRepository_Search_CaseInsensitive(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	books, err := repo.Search("hobbit")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The Hobbit", books[0].Title)
}

func TestRepository_Search_MatchesAuthorAndCategory(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	byAuthor, err := repo.Search("tolkien")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)

	byCategory, err := repo.Search("science fiction")
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)
}

func TestRepository_AdvancedSearch_CategoryFilter(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	books, err := repo.AdvancedSearch(Filters{Category: "Fantasy"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The Hobbit", books[0].Title)
}

func TestRepository_AdvancedSearch_YearRange(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	books, err := repo.AdvancedSearch(Filters{YearFrom: 1900, YearTo: 1940})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The Hobbit", books[0].Title)
}

func TestRepository_AdvancedSearch_Availability(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	available, err := repo.AdvancedSearch(Filters{Availability: "available"})
	require.NoError(t, err)
	assert.Len(t, available, 2)

	borrowed, err := repo.AdvancedSearch(Filters{Availability: "borrowed"})
	require.NoError(t, err)
	require.Len(t, borrowed, 1)
	assert.Equal(t, "Fahrenheit 451", borrowed[0].Title)
}

func TestRepository_AdvancedSearch_SortDescending(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	books, err := repo.AdvancedSearch(Filters{SortBy: "publication_year", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Fahrenheit 451", books[0].Title)
	assert.Equal(t, "Pride and Prejudice", books[2].Title)
}

func TestRepository_AdvancedSearch_UnknownSortFallsBackToTitle(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	// A hostile sort column must not reach the SQL; the query still runs
	// and comes back ordered by title.
	books, err := repo.AdvancedSearch(Filters{SortBy: "isbn; DROP TABLE books"})
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Fahrenheit 451", books[0].Title)

	books, err = repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, books, 3)
}

func TestRepository_AdvancedSearch_LimitAndOffset(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	page, err := repo.AdvancedSearch(Filters{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := repo.AdvancedSearch(Filters{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestRepository_Suggestions(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	s, err := repo.Suggestions("Fa")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fahrenheit 451"}, s.Titles)
	assert.Equal(t, []string{"Fantasy"}, s.Categories)
	assert.Empty(t, s.Authors)
}

func TestRepository_Suggestions_ShortQuery(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	s, err := repo.Suggestions("F")
	require.NoError(t, err)
	assert.Empty(t, s.Titles)
	assert.Empty(t, s.Authors)
	assert.Empty(t, s.Categories)
}

func TestRepository_FilterOptions(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalogue(t, repo)

	opts, err := repo.FilterOptions()
	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy", "Fiction", "Science Fiction"}, opts.Categories)
	assert.Len(t, opts.Authors, 3)
	assert.Equal(t, 1813, opts.YearRange.Min)
	assert.Equal(t, 1953, opts.YearRange.Max)
}

func TestRepository_FilterOptions_EmptyCatalogue(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	opts, err := repo.FilterOptions()
	require.NoError(t, err)
	assert.Empty(t, opts.Categories)
	assert.Zero(t, opts.YearRange.Min)
	assert.Zero(t, opts.YearRange.Max)
}

func TestIsConflictCoversDuplicateISBN(t *testing.T) {
	assert.True(t, database.IsConflict(database.ErrDuplicateISBN))
	assert.False(t, database.IsConflict(errors.New("boom")))
}
