package api

import (
	"net/http"
	"testing"

	"bookshop/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBook(title string) gin.H {
	return gin.H{"title": title, "author": "Frank Herbert", "price": 9.5, "condition": "used"}
}

func createBook(t *testing.T, s *testServer, cookie *http.Cookie, title string) uint {
	t.Helper()
	w := s.do(http.MethodPost, "/books", newBook(title), cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(decodeMap(t, w)["id"].(float64))
}

func TestCreateBookHandler(t *testing.T) {
	s := newTestServer(t)
	userID, cookie := s.signup(t, "victor")

	w := s.do(http.MethodPost, "/books", newBook("Dune"), cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decodeMap(t, w)
	assert.Equal(t, "Dune", b["title"])
	assert.EqualValues(t, userID, b["user_id"])

	w = s.do(http.MethodGet, "/books", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)
}

func TestCreateBookHandler_RequiresSession(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/books", newBook("Dune"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/books", nil, nil)
	assert.Empty(t, decodeList(t, w))
}

func TestCreateBookHandler_Validation(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.signup(t, "walter")

	w := s.do(http.MethodPost, "/books", gin.H{"author": "a", "price": 1, "condition": "new"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required field: title.", decodeMap(t, w)["message"])

	w = s.do(http.MethodPost, "/books", gin.H{"title": "t", "author": "a", "price": -1, "condition": "new"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `Invalid value for "price".`, decodeMap(t, w)["message"])

	w = s.do(http.MethodPost, "/books", `not json`, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMap(t, w)["message"], "Malformed JSON body")
}

func TestGetBookHandler(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.signup(t, "xena")
	id := createBook(t, s, cookie, "Emma")

	w := s.do(http.MethodGet, "/books/"+toStrUint(id), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Emma", decodeMap(t, w)["title"])

	w = s.do(http.MethodGet, "/books/99999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeMap(t, w)
	assert.Equal(t, "Not Found", body["error"])
	assert.Equal(t, "Book with ID 99999 not found", body["message"])

	w = s.do(http.MethodGet, "/books/abc", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateBookHandler_PartialAndIdempotent(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.signup(t, "yara")
	id := createBook(t, s, cookie, "Ulysses")
	path := "/books/" + toStrUint(id)

	w := s.do(http.MethodPatch, path, gin.H{"price": 12.0}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decodeMap(t, w)
	assert.EqualValues(t, 12, first["price"])
	assert.Equal(t, "Ulysses", first["title"])
	assert.Equal(t, "used", first["condition"])

	w = s.do(http.MethodPatch, path, gin.H{"price": 12.0}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeMap(t, w)
	assert.Equal(t, first["price"], second["price"])
	assert.Equal(t, first["title"], second["title"])
}

func TestUpdateBookHandler_Rejections(t *testing.T) {
	s := newTestServer(t)
	_, owner := s.signup(t, "zoe")
	_, stranger := s.signup(t, "adam")
	id := createBook(t, s, owner, "Beloved")
	path := "/books/" + toStrUint(id)

	w := s.do(http.MethodPatch, path, gin.H{"user_id": 2}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `Field "user_id" cannot be updated.`, decodeMap(t, w)["message"])

	w = s.do(http.MethodPatch, path, gin.H{"price": "free"}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `Invalid value for "price".`, decodeMap(t, w)["message"])

	w = s.do(http.MethodPatch, path, `[1,2]`, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, path, gin.H{"title": "Mine now"}, stranger)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, "/books/99999", gin.H{"title": "x"}, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, path, nil, nil)
	assert.Equal(t, "Beloved", decodeMap(t, w)["title"])
}

func TestUpdateBookHandler_OwnershipDisabled(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Auth.EnforceOwnership = false })
	_, owner := s.signup(t, "bea")
	_, other := s.signup(t, "cal")
	id := createBook(t, s, owner, "Middlemarch")

	w := s.do(http.MethodPatch, "/books/"+toStrUint(id), gin.H{"condition": "worn"}, other)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "worn", decodeMap(t, w)["condition"])
}
