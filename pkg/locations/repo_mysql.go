package locations

import (
	"database/sql"
)

type LocationsRepoSQL struct {
	db *sql.DB
}

func NewLocationsRepoSQL(db *sql.DB) *LocationsRepoSQL {
	return &LocationsRepoSQL{db: db}
}

func (repo *LocationsRepoSQL) GetByID(id int64) (*Location, error) {
	query := "SELECT `id`, `name`, `published`, `created` FROM locations WHERE id = ?"
	l := Location{}
	err := repo.db.QueryRow(query, id).Scan(&l.ID, &l.Name, &l.Published, &l.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &l, nil
}

func (repo *LocationsRepoSQL) GetAll() ([]*Location, error) {
	rows, err := repo.db.Query("SELECT `id`, `name`, `published`, `created` FROM locations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*Location, 0)
	for rows.Next() {
		l := &Location{}
		err = rows.Scan(&l.ID, &l.Name, &l.Published, &l.Created)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}

	return result, rows.Err()
}

func (repo *LocationsRepoSQL) Add(l *Location) (int64, error) {
	r, err := repo.db.Exec("INSERT INTO locations (`name`, `published`) VALUES (?, ?)", l.Name, l.Published)
	if err != nil {
		return 0, err
	}

	return r.LastInsertId()
}

func (repo *LocationsRepoSQL) Delete(id int64) (bool, error) {
	r, err := repo.db.Exec("DELETE FROM locations WHERE id = ?", id)
	if err != nil {
		return false, err
	}

	affected, err := r.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
