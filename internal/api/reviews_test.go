package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewKeys = []string{"id", "rating", "comment", "date", "user_id", "book_id", "updated_at"}

func TestCreateReviewHandler(t *testing.T) {
	s := newTestServer(t)
	userID, cookie := s.signup(t, "dora")
	bookID := createBook(t, s, cookie, "Dune")

	w := s.do(http.MethodPost, "/reviews", gin.H{"rating": 5, "comment": "great", "book_id": bookID}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	r := decodeMap(t, w)
	assert.ElementsMatch(t, reviewKeys, keysOf(r))
	assert.EqualValues(t, 5, r["rating"])
	assert.EqualValues(t, userID, r["user_id"])
	assert.NotEmpty(t, r["date"])
}

func TestCreateReviewHandler_Rejections(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.signup(t, "eli")
	bookID := createBook(t, s, cookie, "Dune")

	for _, rating := range []int{0, 6} {
		w := s.do(http.MethodPost, "/reviews", gin.H{"rating": rating, "book_id": bookID}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %d", rating)
		assert.Equal(t, `Invalid value for "rating".`, decodeMap(t, w)["message"])
	}

	w := s.do(http.MethodPost, "/reviews", gin.H{"book_id": bookID}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required field: rating.", decodeMap(t, w)["message"])

	w = s.do(http.MethodPost, "/reviews", gin.H{"rating": 3, "book_id": 99999}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Book with ID 99999 does not exist", decodeMap(t, w)["message"])

	w = s.do(http.MethodPost, "/reviews", gin.H{"rating": 3, "book_id": bookID}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/reviews", nil, nil)
	assert.Empty(t, decodeList(t, w))
}

func TestListReviewsHandler_BookFilter(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.signup(t, "fay")
	first := createBook(t, s, cookie, "One")
	second := createBook(t, s, cookie, "Two")
	for _, id := range []uint{first, first, second} {
		w := s.do(http.MethodPost, "/reviews", gin.H{"rating": 4, "book_id": id}, cookie)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do(http.MethodGet, "/reviews", nil, nil)
	assert.Len(t, decodeList(t, w), 3)

	w = s.do(http.MethodGet, "/reviews?book_id="+toStrUint(first), nil, nil)
	assert.Len(t, decodeList(t, w), 2)

	w = s.do(http.MethodGet, "/reviews?book_id=x", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReviewHandler_NotFound(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/reviews/99999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Review with ID 99999 not found", decodeMap(t, w)["message"])
}

func TestUpdateReviewHandler(t *testing.T) {
	s := newTestServer(t)
	_, author := s.signup(t, "gus")
	_, other := s.signup(t, "hal")
	bookID := createBook(t, s, author, "Dune")

	w := s.do(http.MethodPost, "/reviews", gin.H{"rating": 2, "comment": "meh", "book_id": bookID}, author)
	require.Equal(t, http.StatusCreated, w.Code)
	path := "/reviews/" + toStrUint(uint(decodeMap(t, w)["id"].(float64)))

	w = s.do(http.MethodPatch, path, gin.H{"rating": 4}, author)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	r := decodeMap(t, w)
	assert.EqualValues(t, 4, r["rating"])
	assert.Equal(t, "meh", r["comment"])

	w = s.do(http.MethodPatch, path, gin.H{"comment": nil}, author)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeMap(t, w)["comment"])

	w = s.do(http.MethodPatch, path, gin.H{"rating": 6}, author)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, path, gin.H{"book_id": 1}, author)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, path, gin.H{"rating": 1}, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, path, nil, nil)
	assert.EqualValues(t, 4, decodeMap(t, w)["rating"])
}

func TestCreateReviewHandler_AcceptsNumericStrings(t *testing.T) {
	s := newTestServer(t)
	userID, cookie := s.signup(t, "ida")
	bookID := createBook(t, s, cookie, "Dune")

	// form selects and route params arrive as strings; user_id is ignored in favour of the session
	w := s.do(http.MethodPost, "/reviews", gin.H{
		"rating":  "4",
		"comment": "x",
		"user_id": 1,
		"book_id": toStrUint(bookID),
	}, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	r := decodeMap(t, w)
	assert.EqualValues(t, 4, r["rating"])
	assert.EqualValues(t, bookID, r["book_id"])
	assert.EqualValues(t, userID, r["user_id"])

	w = s.do(http.MethodPost, "/reviews", gin.H{"rating": "9", "book_id": toStrUint(bookID)}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `Invalid value for "rating".`, decodeMap(t, w)["message"])

	w = s.do(http.MethodPost, "/reviews", gin.H{"rating": "four", "book_id": toStrUint(bookID)}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMap(t, w)["message"], "Malformed JSON body")

	w = s.do(http.MethodPost, "/reviews", gin.H{"rating": "3"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required field: book_id.", decodeMap(t, w)["message"])

	path := "/reviews/" + toStrUint(uint(r["id"].(float64)))
	w = s.do(http.MethodPatch, path, gin.H{"rating": "2"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decodeMap(t, w)["rating"])
}
