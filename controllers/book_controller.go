// controllers/book_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/db"

	"github.com/gin-gonic/gin"
)

type BookController struct{ *Srv }

func NewBookController(s *Srv) *BookController { return &BookController{Srv: s} }

type bookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	Category        *string `json:"category"`
	TotalCopies     *int    `json:"totalCopies"`
	AvailableCopies *int    `json:"availableCopies"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// POST /api/library/books
func (bc *BookController) CreateOrIncrease(c *gin.Context) {
	var in bookRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	b, err := bc.Repo.CreateOrIncreaseBook(c.Request.Context(), db.BookIntake{
		Title:           deref(in.Title),
		Author:          deref(in.Author),
		Category:        deref(in.Category),
		TotalCopies:     deref(in.TotalCopies),
		AvailableCopies: deref(in.AvailableCopies),
	})
	if err != nil {
		bc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b.View())
}

// GET /api/library/books?category=&available=&page=&size=&sortBy=&dir=
func (bc *BookController) List(c *gin.Context) {
	q := db.BooksQuery{
		Category: c.Query("category"),
		SortBy:   c.DefaultQuery("sortBy", "title"),
		Dir:      c.DefaultQuery("dir", "asc"),
	}
	var err error
	if v := c.Query("available"); v != "" {
		if q.AvailableOnly, err = strconv.ParseBool(v); err != nil {
			bc.fail(c, db.Validationf("available must be true or false"))
			return
		}
	}
	if q.Page, err = strconv.Atoi(c.DefaultQuery("page", "0")); err != nil {
		bc.fail(c, db.Validationf("page must be an integer"))
		return
	}
	if q.Size, err = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(db.DefaultPageSize))); err != nil {
		bc.fail(c, db.Validationf("size must be an integer"))
		return
	}

	res, err := bc.Repo.ListBooks(c.Request.Context(), q)
	if err != nil {
		bc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PUT /api/library/books/:id
func (bc *BookController) Update(c *gin.Context) {
	id, ok := bc.pathID(c, "id")
	if !ok {
		return
	}
	var in bookRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	b, err := bc.Repo.UpdateBook(c.Request.Context(), id, db.BookPatch{
		Title:           in.Title,
		Author:          in.Author,
		Category:        in.Category,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.AvailableCopies,
	})
	if err != nil {
		bc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b.View())
}

// DELETE /api/library/books/:id
func (bc *BookController) Delete(c *gin.Context) {
	id, ok := bc.pathID(c, "id")
	if !ok {
		return
	}
	if err := bc.Repo.SoftDeleteBook(c.Request.Context(), id); err != nil {
		bc.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
