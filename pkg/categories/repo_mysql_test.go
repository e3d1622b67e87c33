package categories

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var created = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
var cat = &Category{
	ID:          int64(3),
	Title:       "Travel",
	Description: "trip reports and photos",
	Slug:        "travel",
	Published:   true,
	Created:     created,
}

func categoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "slug", "published", "created"}).
		AddRow(cat.ID, cat.Title, cat.Description, cat.Slug, cat.Published, cat.Created)
}

func TestGetByField(t *testing.T) {
	cases := []struct {
		getBy func(*CategoriesRepoSQL, interface{}) (*Category, error)
		param interface{}
	}{
		{
			getBy: func(r *CategoriesRepoSQL, id interface{}) (*Category, error) {
				return r.GetByID(id.(int64))
			},
			param: cat.ID,
		},
		{
			getBy: func(r *CategoriesRepoSQL, slug interface{}) (*Category, error) {
				return r.GetBySlug(slug.(string))
			},
			param: cat.Slug,
		},
	}

	for _, tc := range cases {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}

		defer db.Close()

		repo := NewCategoriesRepoSQL(db)

		mock.
			ExpectQuery("SELECT `id`, `title`, `description`, `slug`, `published`, `created` FROM categories WHERE").
			WithArgs(tc.param).
			WillReturnRows(categoryRows())

		res, err := tc.getBy(repo, tc.param)
		if err != nil {
			t.Fatalf("unexpected error: %v", err.Error())
		}

		if !reflect.DeepEqual(cat, res) {
			t.Fatalf("expected %v, but was %v", cat, res)
		}

		// error
		mock.
			ExpectQuery("SELECT `id`, `title`, `description`, `slug`, `published`, `created` FROM categories WHERE").
			WithArgs(tc.param).
			WillReturnError(errors.New("db_error"))

		res, err = tc.getBy(repo, tc.param)

		if res != nil {
			t.Fatalf("unexpected result: %v", res)
		}

		if err == nil {
			t.Fatalf("expected error but was nil")
		}

		// no rows
		mock.
			ExpectQuery("SELECT `id`, `title`, `description`, `slug`, `published`, `created` FROM categories WHERE").
			WithArgs(tc.param).
			WillReturnError(sql.ErrNoRows)

		res, err = tc.getBy(repo, tc.param)

		if res != nil || err != nil {
			t.Fatalf("wrong result, expected both nil but was %v, %v", res, err)
		}
	}
}

func TestGetPublished(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCategoriesRepoSQL(db)

	mock.
		ExpectQuery("SELECT `id`, `title`, `description`, `slug`, `published`, `created` FROM categories WHERE published").
		WillReturnRows(categoryRows())

	res, err := repo.GetPublished()
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if len(res) != 1 || !reflect.DeepEqual(res[0], cat) {
		t.Fatalf("expected [%v], but was %v", cat, res)
	}

	// error
	mock.
		ExpectQuery("SELECT `id`, `title`, `description`, `slug`, `published`, `created` FROM categories WHERE published").
		WillReturnError(errors.New("db_error"))

	if _, err = repo.GetPublished(); err == nil {
		t.Fatal("expected error but was nil")
	}
}

func TestPublishedIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCategoriesRepoSQL(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(3)).AddRow(int64(7))
	mock.
		ExpectQuery("SELECT `id` FROM categories WHERE published").
		WillReturnRows(rows)

	ids, err := repo.PublishedIDs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	expected := map[int64]bool{3: true, 7: true}
	if !reflect.DeepEqual(ids, expected) {
		t.Fatalf("expected %v, but was %v", expected, ids)
	}
}

func TestAdd(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCategoriesRepoSQL(db)
	mock.
		ExpectExec("INSERT INTO categories").
		WithArgs(cat.Title, cat.Description, cat.Slug, cat.Published).
		WillReturnResult(sqlmock.NewResult(cat.ID, int64(1)))

	id, err := repo.Add(cat)
	if err != nil {
		t.Fatalf("unexpected error while adding category: %v", err.Error())
	}
	if id != cat.ID {
		t.Fatalf("expected %v but was %v", cat.ID, id)
	}

	// error
	mock.
		ExpectExec("INSERT INTO categories").
		WithArgs(cat.Title, cat.Description, cat.Slug, cat.Published).
		WillReturnError(errors.New("db_error"))

	if _, err = repo.Add(cat); err == nil {
		t.Fatal("expected error but was nil")
	}
}

func TestDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCategoriesRepoSQL(db)
	mock.
		ExpectExec("DELETE FROM categories").
		WithArgs(cat.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(cat.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if !deleted {
		t.Fatal("expected true but was false")
	}

	// nothing deleted
	mock.
		ExpectExec("DELETE FROM categories").
		WithArgs(cat.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.Delete(cat.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if deleted {
		t.Fatal("expected false but was true")
	}
}
