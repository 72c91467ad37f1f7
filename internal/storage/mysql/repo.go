package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	drv "github.com/go-sql-driver/mysql"

	"dealership_api/internal/domain"
)

const errDuplicateEntry = 1062

func valInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// GetUser returns domain.ErrNotFound when the user name is unknown.
func (r *Repo) GetUser(ctx context.Context, userName string) (domain.User, error) {
	var u domain.User
	var first, last, email sql.NullString
	err := r.db.QueryRowContext(ctx, getUserSQL, userName).
		Scan(&u.ID, &u.UserName, &first, &last, &email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.FirstName, u.LastName, u.Email = first.String, last.String, email.String
	return u, nil
}

// CreateUser maps a unique-key collision on username to domain.ErrAlreadyRegistered.
func (r *Repo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.UserName, u.FirstName, u.LastName, u.Email, u.PasswordHash)
	if err != nil {
		var me *drv.MySQLError
		if errors.As(err, &me) && me.Number == errDuplicateEntry {
			return 0, domain.ErrAlreadyRegistered
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) CountMakes(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countMakesSQL).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertCatalog writes all makes and their models in one transaction.
func (r *Repo) InsertCatalog(ctx context.Context, makes []domain.CarMake) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, mk := range makes {
		res, err := tx.ExecContext(ctx, insertMakeSQL, mk.Name, mk.Description)
		if err != nil {
			return fmt.Errorf("insert make %s: %w", mk.Name, err)
		}
		makeID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, m := range mk.Models {
			if _, err := tx.ExecContext(ctx, insertModelSQL, makeID, m.Name, m.Type, m.Year, valInt64(m.DealerID)); err != nil {
				return fmt.Errorf("insert model %s %s: %w", mk.Name, m.Name, err)
			}
		}
	}
	return tx.Commit()
}

func (r *Repo) ListCarModels(ctx context.Context) ([]domain.CarModelView, error) {
	rows, err := r.db.QueryContext(ctx, listCarModelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.CarModelView{}
	for rows.Next() {
		var v domain.CarModelView
		if err := rows.Scan(&v.CarModel, &v.CarMake); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
