package repository

import (
	"chanboard/internal/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the single store handle shared by every request. It is
// safe for concurrent use; each mutating method runs in its own transaction.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var (
	forUpdate = clause.Locking{Strength: "UPDATE"}
	forShare  = clause.Locking{Strength: "SHARE"}
)

// lookupErr maps a lookup failure to NotFound or a wrapped database error.
func lookupErr(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFoundError(kind, id)
	}
	return utils.NewDatabaseError("load "+kind, err)
}

// passThrough keeps AppErrors returned from inside a transaction intact and
// wraps anything else.
func passThrough(err error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return utils.NewDatabaseError(op, err)
}
