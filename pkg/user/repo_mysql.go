package user

import (
	"database/sql"
)

type UserRepoSQL struct {
	db *sql.DB
}

func NewUserRepoSQL(db *sql.DB) *UserRepoSQL {
	return &UserRepoSQL{db: db}
}

func (repo *UserRepoSQL) GetByID(id int64) (*User, error) {
	query := "SELECT `id`, `username`, `password`, `first_name`, `last_name`, `email` FROM users WHERE id = ?"
	return scanUser(repo.db.QueryRow(query, id))
}

func (repo *UserRepoSQL) GetByUsername(username string) (*User, error) {
	query := "SELECT `id`, `username`, `password`, `first_name`, `last_name`, `email` FROM users WHERE username = ?"
	return scanUser(repo.db.QueryRow(query, username))
}

func (repo *UserRepoSQL) Add(user *User) (int64, error) {
	query := "INSERT INTO users (`username`, `password`) VALUES (?, ?)"
	r, err := repo.db.Exec(query, user.Username, user.Password)
	if err != nil {
		return 0, err
	}

	lastID, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}

	return lastID, nil
}

func (repo *UserRepoSQL) Update(user *User) error {
	query := "UPDATE users SET `username` = ?, `first_name` = ?, `last_name` = ?, `email` = ? WHERE id = ?"
	_, err := repo.db.Exec(query, user.Username, user.FirstName, user.LastName, user.Email, user.ID)
	return err
}

func (repo *UserRepoSQL) Delete(id int64) (bool, error) {
	r, err := repo.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, err
	}

	affected, err := r.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func scanUser(r *sql.Row) (*User, error) {
	u := User{}
	err := r.Scan(&u.ID, &u.Username, &u.Password, &u.FirstName, &u.LastName, &u.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}
