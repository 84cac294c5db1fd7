package api

import (
	"net/http"

	"bookshop/internal/apperr"
	"bookshop/internal/auth"
	"bookshop/internal/book"
	"bookshop/internal/db"

	"github.com/gin-gonic/gin"
)

type CreateBookRequest struct {
	Title     *string  `json:"title" binding:"required"`
	Author    *string  `json:"author" binding:"required"`
	Price     *float64 `json:"price" binding:"required,gte=0"`
	Condition *string  `json:"condition" binding:"required"`
}

// GET /books
func ListBooksHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := parsePage(c)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		books, err := store.ListBooks(c.Request.Context(), page)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, books)
	}
}

// POST /books  [login]
func CreateBookHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.IdentityFrom(c)
		var req CreateBookRequest
		if err := bindJSON(c, &req); err != nil {
			apperr.Abort(c, err)
			return
		}
		b := book.Book{
			Title:     *req.Title,
			Author:    *req.Author,
			Price:     *req.Price,
			Condition: *req.Condition,
			UserID:    id.UserID,
		}
		ctx := c.Request.Context()
		err := store.Tx(ctx, func(tx *db.Store) error {
			return tx.CreateBook(ctx, &b)
		})
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, b)
	}
}

// GET /books/:id
func GetBookHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, err := parseID(c, "Book")
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		b, err := store.GetBook(c.Request.Context(), bookID)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// PATCH /books/:id  [login; owner when enforceOwnership]
func UpdateBookHandler(store *db.Store, enforceOwnership bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.IdentityFrom(c)
		bookID, err := parseID(c, "Book")
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		body, err := decodeObject(c)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		fields, err := bookPatch.apply(body)
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		var b *book.Book
		ctx := c.Request.Context()
		err = store.Tx(ctx, func(tx *db.Store) error {
			var err error
			if b, err = tx.GetBook(ctx, bookID); err != nil {
				return err
			}
			if enforceOwnership && b.UserID != id.UserID {
				return apperr.New(apperr.Forbidden, "You may only edit your own books.")
			}
			return tx.UpdateBook(ctx, b, fields)
		})
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}
