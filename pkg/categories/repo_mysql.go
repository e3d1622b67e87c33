package categories

import (
	"database/sql"
)

type CategoriesRepoSQL struct {
	db *sql.DB
}

func NewCategoriesRepoSQL(db *sql.DB) *CategoriesRepoSQL {
	return &CategoriesRepoSQL{db: db}
}

func (repo *CategoriesRepoSQL) GetByID(id int64) (*Category, error) {
	query := "SELECT `id`, `title`, `description`, `slug`, `published`, `created` FROM categories WHERE id = ?"
	return scanCategory(repo.db.QueryRow(query, id))
}

func (repo *CategoriesRepoSQL) GetBySlug(slug string) (*Category, error) {
	query := "SELECT `id`, `title`, `description`, `slug`, `published`, `created` FROM categories WHERE slug = ?"
	return scanCategory(repo.db.QueryRow(query, slug))
}

func (repo *CategoriesRepoSQL) GetPublished() ([]*Category, error) {
	query := "SELECT `id`, `title`, `description`, `slug`, `published`, `created` FROM categories WHERE published = true"
	rows, err := repo.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*Category, 0)
	for rows.Next() {
		c := &Category{}
		err = rows.Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &c.Published, &c.Created)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}

	return result, rows.Err()
}

// PublishedIDs returns the live set of published category ids. The feed layer
// uses it to hide posts whose category was unpublished after the post was made.
func (repo *CategoriesRepoSQL) PublishedIDs() (map[int64]bool, error) {
	rows, err := repo.db.Query("SELECT `id` FROM categories WHERE published = true")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}

	return ids, rows.Err()
}

func (repo *CategoriesRepoSQL) Add(c *Category) (int64, error) {
	query := "INSERT INTO categories (`title`, `description`, `slug`, `published`) VALUES (?, ?, ?, ?)"
	r, err := repo.db.Exec(query, c.Title, c.Description, c.Slug, c.Published)
	if err != nil {
		return 0, err
	}

	return r.LastInsertId()
}

func (repo *CategoriesRepoSQL) Delete(id int64) (bool, error) {
	r, err := repo.db.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return false, err
	}

	affected, err := r.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func scanCategory(r *sql.Row) (*Category, error) {
	c := Category{}
	err := r.Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &c.Published, &c.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}
