package controllers

import (
	"net/http"

	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/db"

	"github.com/gin-gonic/gin"
)

type BorrowerController struct{ *Srv }

func NewBorrowerController(s *Srv) *BorrowerController { return &BorrowerController{Srv: s} }

// POST /api/library/borrowers
func (bc *BorrowerController) Register(c *gin.Context) {
	var in struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		MembershipType string `json:"membershipType"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	b, err := bc.Repo.RegisterBorrower(c.Request.Context(), db.RegisterBorrowerInput{
		Name:           in.Name,
		Email:          in.Email,
		MembershipType: in.MembershipType,
	})
	if err != nil {
		bc.fail(c, err)
		return
	}
	if err := bc.Borrowers.Set(c.Request.Context(), b); err != nil {
		bc.Log.Warn("cache borrower", "id", b.ID, "err", err)
	}
	c.JSON(http.StatusCreated, b.View())
}

// GET /api/library/borrowers/:id
func (bc *BorrowerController) Get(c *gin.Context) {
	id, ok := bc.pathID(c, "id")
	if !ok {
		return
	}
	b, err := bc.Borrowers.GetOrLoad(c.Request.Context(), id, bc.Repo.FindBorrowerByID)
	if err != nil {
		bc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b.View())
}
