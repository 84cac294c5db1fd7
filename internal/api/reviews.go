package api

import (
	"net/http"
	"time"

	"bookshop/internal/apperr"
	"bookshop/internal/auth"
	"bookshop/internal/book"
	"bookshop/internal/db"

	"github.com/gin-gonic/gin"
)

type CreateReviewRequest struct {
	Rating  *looseInt `json:"rating" binding:"required,min=1,max=5"`
	Comment *string   `json:"comment"`
	BookID  *looseInt `json:"book_id" binding:"required,min=1"`
}

// GET /reviews?book_id=
func ListReviewsHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := parsePage(c)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		bookID, err := queryUint(c, "book_id")
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		reviews, err := store.ListReviews(c.Request.Context(), db.ReviewFilter{BookID: bookID, Page: page})
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, reviews)
	}
}

// POST /reviews  [login]
func CreateReviewHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.IdentityFrom(c)
		var req CreateReviewRequest
		if err := bindJSON(c, &req); err != nil {
			apperr.Abort(c, err)
			return
		}
		r := book.Review{
			Rating:  int(*req.Rating),
			Comment: req.Comment,
			Date:    time.Now().UTC(),
			UserID:  id.UserID,
			BookID:  uint(*req.BookID),
		}
		ctx := c.Request.Context()
		err := store.Tx(ctx, func(tx *db.Store) error {
			return tx.CreateReview(ctx, &r)
		})
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

// GET /reviews/:id
func GetReviewHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewID, err := parseID(c, "Review")
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		r, err := store.GetReview(c.Request.Context(), reviewID)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

// PATCH /reviews/:id  [login; author when enforceOwnership]
func UpdateReviewHandler(store *db.Store, enforceOwnership bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.IdentityFrom(c)
		reviewID, err := parseID(c, "Review")
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		body, err := decodeObject(c)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		fields, err := reviewPatch.apply(body)
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		var r *book.Review
		ctx := c.Request.Context()
		err = store.Tx(ctx, func(tx *db.Store) error {
			var err error
			if r, err = tx.GetReview(ctx, reviewID); err != nil {
				return err
			}
			if enforceOwnership && r.UserID != id.UserID {
				return apperr.New(apperr.Forbidden, "You may only edit your own reviews.")
			}
			return tx.UpdateReview(ctx, r, fields)
		})
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}
