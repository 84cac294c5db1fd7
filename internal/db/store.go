package db

import (
	"context"

	"bookshop/internal/apperr"
	"bookshop/internal/book"
	"bookshop/internal/user"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Store is the entity store. A Store obtained from Tx is bound to that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Tx runs fn inside one transaction. It commits when fn returns nil and rolls back
// when fn returns an error or panics.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Page limits a list query. The zero value returns every row.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}

// classify tags raw gorm errors with the apperr kind callers care about.
func classify(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Duplicate(errors.Wrap(err, op))
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Wrap(err, apperr.Validation, "Referenced record does not exist")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return apperr.Wrap(err, apperr.Validation, "Value out of range")
	default:
		return errors.Wrap(err, op)
	}
}

func get[T any](ctx context.Context, db *gorm.DB, id uint, entity string) (*T, error) {
	var rec T
	err := db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.NotFound, "%s with ID %d not found", entity, id)
	}
	if err != nil {
		return nil, classify(err, "get "+entity)
	}
	return &rec, nil
}

func list[T any](ctx context.Context, q *gorm.DB, page Page, entity string) ([]T, error) {
	recs := []T{}
	if err := page.apply(q.WithContext(ctx).Order("id")).Find(&recs).Error; err != nil {
		return nil, classify(err, "list "+entity)
	}
	return recs, nil
}

// update writes exactly the given columns onto rec and reloads it.
func update[T any](ctx context.Context, db *gorm.DB, rec *T, fields map[string]any, entity string) error {
	if len(fields) > 0 {
		if err := db.WithContext(ctx).Model(rec).Updates(fields).Error; err != nil {
			return classify(err, "update "+entity)
		}
	}
	return classify(db.WithContext(ctx).First(rec).Error, "reload "+entity)
}

// Users

func (s *Store) ListUsers(ctx context.Context, page Page) ([]user.User, error) {
	return list[user.User](ctx, s.db, page, "users")
}

func (s *Store) GetUser(ctx context.Context, id uint) (*user.User, error) {
	return get[user.User](ctx, s.db, id, "User")
}

func (s *Store) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "count users")
	}
	return count > 0, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.NotFound, "User %s not found", username)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find user by username %s", username)
	}
	return &u, nil
}

func (s *Store) FindRole(ctx context.Context, name user.RoleName) (*user.Role, error) {
	var r user.Role
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.NotFound, "Role %s not found", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find role %s", name)
	}
	return &r, nil
}

// CreateUser inserts u together with its user_roles rows.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	return classify(s.db.WithContext(ctx).Create(u).Error, "create user")
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User, fields map[string]any) error {
	return update(ctx, s.db, u, fields, "user")
}

// Books

func (s *Store) ListBooks(ctx context.Context, page Page) ([]book.Book, error) {
	return list[book.Book](ctx, s.db, page, "books")
}

func (s *Store) GetBook(ctx context.Context, id uint) (*book.Book, error) {
	return get[book.Book](ctx, s.db, id, "Book")
}

// requireUser reports a dangling owner id as Validation before the insert hits the
// foreign key, so every driver answers the same way.
func (s *Store) requireUser(ctx context.Context, id uint) error {
	ok, err := s.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Newf(apperr.Validation, "User with ID %d does not exist", id)
	}
	return nil
}

func (s *Store) CreateBook(ctx context.Context, b *book.Book) error {
	if err := s.requireUser(ctx, b.UserID); err != nil {
		return err
	}
	return classify(s.db.WithContext(ctx).Create(b).Error, "create book")
}

func (s *Store) UpdateBook(ctx context.Context, b *book.Book, fields map[string]any) error {
	return update(ctx, s.db, b, fields, "book")
}

// Reviews

type ReviewFilter struct {
	BookID *uint
	Page   Page
}

func (s *Store) ListReviews(ctx context.Context, f ReviewFilter) ([]book.Review, error) {
	q := s.db
	if f.BookID != nil {
		q = q.Where("book_id = ?", *f.BookID)
	}
	return list[book.Review](ctx, q, f.Page, "reviews")
}

func (s *Store) GetReview(ctx context.Context, id uint) (*book.Review, error) {
	return get[book.Review](ctx, s.db, id, "Review")
}

// CreateReview checks the referenced author and book first so a dangling id is
// reported the same way on every driver.
func (s *Store) CreateReview(ctx context.Context, r *book.Review) error {
	if err := s.requireUser(ctx, r.UserID); err != nil {
		return err
	}
	if _, err := s.GetBook(ctx, r.BookID); err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return apperr.Newf(apperr.Validation, "Book with ID %d does not exist", r.BookID)
		}
		return err
	}
	return classify(s.db.WithContext(ctx).Create(r).Error, "create review")
}

func (s *Store) UpdateReview(ctx context.Context, r *book.Review, fields map[string]any) error {
	return update(ctx, s.db, r, fields, "review")
}
