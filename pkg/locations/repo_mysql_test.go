package locations

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var created = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
var loc = &Location{ID: int64(5), Name: "Lisbon", Published: true, Created: created}

func locationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "published", "created"}).
		AddRow(loc.ID, loc.Name, loc.Published, loc.Created)
}

func TestGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewLocationsRepoSQL(db)

	mock.
		ExpectQuery("SELECT `id`, `name`, `published`, `created` FROM locations WHERE").
		WithArgs(loc.ID).
		WillReturnRows(locationRows())

	res, err := repo.GetByID(loc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if !reflect.DeepEqual(loc, res) {
		t.Fatalf("expected %v, but was %v", loc, res)
	}

	// no rows
	mock.
		ExpectQuery("SELECT `id`, `name`, `published`, `created` FROM locations WHERE").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "published", "created"}))

	res, err = repo.GetByID(int64(404))
	if res != nil || err != nil {
		t.Fatalf("wrong result, expected both nil but was %v, %v", res, err)
	}

	// error
	mock.
		ExpectQuery("SELECT `id`, `name`, `published`, `created` FROM locations WHERE").
		WithArgs(loc.ID).
		WillReturnError(errors.New("db_error"))

	if _, err = repo.GetByID(loc.ID); err == nil {
		t.Fatal("expected error but was nil")
	}
}

func TestGetAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewLocationsRepoSQL(db)

	mock.
		ExpectQuery("SELECT `id`, `name`, `published`, `created` FROM locations").
		WillReturnRows(locationRows())

	res, err := repo.GetAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if len(res) != 1 || !reflect.DeepEqual(res[0], loc) {
		t.Fatalf("expected [%v], but was %v", loc, res)
	}

	// error
	mock.
		ExpectQuery("SELECT `id`, `name`, `published`, `created` FROM locations").
		WillReturnError(errors.New("db_error"))

	if _, err = repo.GetAll(); err == nil {
		t.Fatal("expected error but was nil")
	}
}

func TestAdd(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewLocationsRepoSQL(db)
	mock.
		ExpectExec("INSERT INTO locations").
		WithArgs(loc.Name, loc.Published).
		WillReturnResult(sqlmock.NewResult(loc.ID, int64(1)))

	id, err := repo.Add(loc)
	if err != nil {
		t.Fatalf("unexpected error while adding location: %v", err.Error())
	}
	if id != loc.ID {
		t.Fatalf("expected %v but was %v", loc.ID, id)
	}

	// error
	mock.
		ExpectExec("INSERT INTO locations").
		WithArgs(loc.Name, loc.Published).
		WillReturnError(errors.New("db_error"))

	if _, err = repo.Add(loc); err == nil {
		t.Fatal("expected error but was nil")
	}
}

func TestDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewLocationsRepoSQL(db)
	mock.
		ExpectExec("DELETE FROM locations").
		WithArgs(loc.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(loc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if !deleted {
		t.Fatal("expected true but was false")
	}

	// nothing deleted
	mock.
		ExpectExec("DELETE FROM locations").
		WithArgs(loc.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.Delete(loc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if deleted {
		t.Fatal("expected false but was true")
	}
}
