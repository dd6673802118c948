package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/routes"
	"Gin_postgres_redis_library/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type server struct {
	t *testing.T
	a *app.App
}

func newServer(t *testing.T, cfg app.Config, rdb *redis.Client) *server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := app.NewWithDeps(cfg, logger, testutil.NewDB(t), rdb)
	routes.RegisterRoutes(a.Router, a)
	return &server{t: t, a: a}
}

func (s *server) do(method, path string, body any) (int, map[string]any) {
	s.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.a.Router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (s *server) list(path string) (int, []map[string]any) {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.a.Router.ServeHTTP(w, req)
	var out []map[string]any
	if w.Code == http.StatusOK {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func (s *server) book(title string, copies int) string {
	s.t.Helper()
	code, b := s.do(http.MethodPost, "/api/library/books", map[string]any{
		"title": title, "author": "A", "category": "fiction",
		"totalCopies": copies, "availableCopies": copies,
	})
	require.Equal(s.t, http.StatusCreated, code)
	return b["id"].(string)
}

func (s *server) borrower(tier string) string {
	s.t.Helper()
	code, b := s.do(http.MethodPost, "/api/library/borrowers", map[string]any{
		"name": "Reader", "email": "r@example.com", "membershipType": tier,
	})
	require.Equal(s.t, http.StatusCreated, code)
	return b["id"].(string)
}

func Test_Healthz(t *testing.T) {
	s := newServer(t, app.Config{}, nil)
	code, body := s.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
}

func Test_Books(t *testing.T) {
	s := newServer(t, app.Config{}, nil)

	t.Run("create then merge by title", func(t *testing.T) {
		id := s.book("Dune", 3)
		code, b := s.do(http.MethodPost, "/api/library/books", map[string]any{
			"title": "  Dune ", "totalCopies": 3, "availableCopies": 3,
		})
		require.Equal(t, http.StatusCreated, code)
		assert.Equal(t, id, b["id"])
		assert.EqualValues(t, 6, b["totalCopies"])
		assert.EqualValues(t, 6, b["availableCopies"])
		assert.Equal(t, true, b["isAvailable"])
	})

	t.Run("blank title", func(t *testing.T) {
		code, b := s.do(http.MethodPost, "/api/library/books", map[string]any{"title": "  "})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "title required", b["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/library/books", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.a.Router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list page envelope", func(t *testing.T) {
		s.book("Emma", 0)
		code, page := s.do(http.MethodGet, "/api/library/books?size=1&sortBy=title&dir=desc", nil)
		require.Equal(t, http.StatusOK, code)
		assert.EqualValues(t, 2, page["totalElements"])
		assert.EqualValues(t, 2, page["totalPages"])
		assert.EqualValues(t, 1, page["size"])
		content := page["content"].([]any)
		require.Len(t, content, 1)
		assert.Equal(t, "Emma", content[0].(map[string]any)["title"])

		_, page = s.do(http.MethodGet, "/api/library/books?available=true", nil)
		assert.EqualValues(t, 1, page["totalElements"])
	})

	t.Run("list bad query", func(t *testing.T) {
		for _, q := range []string{"sortBy=password", "size=101", "page=-1", "page=x", "available=maybe"} {
			code, _ := s.do(http.MethodGet, "/api/library/books?"+q, nil)
			assert.Equal(t, http.StatusBadRequest, code, q)
		}
	})

	t.Run("update", func(t *testing.T) {
		id := s.book("Persuasion", 2)
		code, b := s.do(http.MethodPut, "/api/library/books/"+id, map[string]any{
			"title": "", "author": "Jane Austen", "totalCopies": 0, "availableCopies": 9,
		})
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Persuasion", b["title"])
		assert.Equal(t, "Jane Austen", b["author"])
		assert.EqualValues(t, 2, b["totalCopies"])
		assert.EqualValues(t, 9, b["availableCopies"])

		code, body := s.do(http.MethodPut, "/api/library/books/"+id, map[string]any{"title": "Dune"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "a book with this title already exists", body["error"])

		code, _ = s.do(http.MethodPut, "/api/library/books/"+uuid.NewString(), map[string]any{"author": "x"})
		assert.Equal(t, http.StatusNotFound, code)
		code, _ = s.do(http.MethodPut, "/api/library/books/not-a-uuid", map[string]any{"author": "x"})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("delete", func(t *testing.T) {
		id := s.book("Ulysses", 1)
		code, _ := s.do(http.MethodDelete, "/api/library/books/"+id, nil)
		assert.Equal(t, http.StatusNoContent, code)
		code, _ = s.do(http.MethodDelete, "/api/library/books/"+id, nil)
		assert.Equal(t, http.StatusNotFound, code)
		code, _ = s.do(http.MethodPut, "/api/library/books/"+id, map[string]any{"author": "x"})
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func Test_Borrowers(t *testing.T) {
	s := newServer(t, app.Config{}, nil)

	code, b := s.do(http.MethodPost, "/api/library/borrowers", map[string]any{"name": "Ada", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "BASIC", b["membershipType"])
	assert.EqualValues(t, 2, b["maxBorrowLimit"])

	code, got := s.do(http.MethodGet, "/api/library/borrowers/"+b["id"].(string), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ada", got["name"])

	code, _ = s.do(http.MethodPost, "/api/library/borrowers", map[string]any{"name": "X", "membershipType": "GOLD"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/library/borrowers/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/api/library/borrowers/42", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func Test_Borrowers_Cached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := newServer(t, app.Config{BorrowerCacheTTL: time.Minute}, rdb)

	id := s.borrower("premium")
	assert.True(t, mr.Exists("lib:borrower:"+id), "registration fills the cache")

	// served from redis even once the row is gone
	require.NoError(t, s.a.DB.Exec("DELETE FROM lib_borrowers WHERE id = ?", id).Error)
	code, got := s.do(http.MethodGet, "/api/library/borrowers/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "PREMIUM", got["membershipType"])
	assert.EqualValues(t, 5, got["maxBorrowLimit"])
}

func Test_Borrowers_CacheDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := newServer(t, app.Config{BorrowerCacheTTL: time.Minute}, rdb)
	mr.Close()

	id := s.borrower("BASIC")
	code, got := s.do(http.MethodGet, "/api/library/borrowers/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, got["id"])
}

func Test_BorrowAndReturn(t *testing.T) {
	s := newServer(t, app.Config{}, nil)
	bookID := s.book("Middlemarch", 1)
	borrowerID := s.borrower("BASIC")
	borrowPath := fmt.Sprintf("/api/library/records/borrow/%s/%s", bookID, borrowerID)

	code, rec := s.do(http.MethodPost, borrowPath, nil)
	require.Equal(t, http.StatusCreated, code)
	recordID := rec["id"].(string)
	assert.Nil(t, rec["returnDate"])
	assert.EqualValues(t, 0, rec["fineAmount"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, rec["borrowDate"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, rec["dueDate"])

	code, body := s.do(http.MethodPost, borrowPath, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "book not available", body["error"])

	code, active := s.list("/api/library/records/active")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, active, 1)
	assert.Equal(t, recordID, active[0]["id"])

	code, body = s.do(http.MethodDelete, "/api/library/books/"+bookID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "cannot delete book with active borrow records", body["error"])

	code, rec = s.do(http.MethodPost, "/api/library/records/return/"+recordID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, rec["returnDate"])
	assert.EqualValues(t, 0, rec["fineAmount"])

	code, body = s.do(http.MethodPost, "/api/library/records/return/"+recordID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "book already returned", body["error"])

	code, active = s.list("/api/library/records/active")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, active)

	code, _ = s.do(http.MethodDelete, "/api/library/books/"+bookID, nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func Test_BorrowAndReturn_NotFound(t *testing.T) {
	s := newServer(t, app.Config{}, nil)
	bookID := s.book("Lolita", 1)
	borrowerID := s.borrower("")

	cases := map[string]int{
		fmt.Sprintf("/api/library/records/borrow/%s/%s", uuid.NewString(), borrowerID): http.StatusNotFound,
		fmt.Sprintf("/api/library/records/borrow/%s/%s", bookID, uuid.NewString()):     http.StatusNotFound,
		fmt.Sprintf("/api/library/records/borrow/%s/%s", "nope", borrowerID):           http.StatusBadRequest,
		"/api/library/records/return/" + uuid.NewString():                              http.StatusNotFound,
		"/api/library/records/return/nope":                                             http.StatusBadRequest,
	}
	for path, want := range cases {
		code, _ := s.do(http.MethodPost, path, nil)
		assert.Equal(t, want, code, path)
	}
}

func Test_RateLimit(t *testing.T) {
	s := newServer(t, app.Config{RateLimitRPS: 1, RateLimitBurst: 2}, nil)
	t.Cleanup(s.a.Close)

	for i := 0; i < 2; i++ {
		code, _ := s.do(http.MethodGet, "/healthz", nil)
		require.Equal(t, http.StatusOK, code)
	}
	code, body := s.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "rate limit exceeded", body["error"])
}
