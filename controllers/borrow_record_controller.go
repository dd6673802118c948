// controllers/borrow_record_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type BorrowRecordController struct{ *Srv }

func NewBorrowRecordController(s *Srv) *BorrowRecordController {
	return &BorrowRecordController{Srv: s}
}

// 借出 POST /api/library/records/borrow/:bookId/:borrowerId
func (rc *BorrowRecordController) Borrow(c *gin.Context) {
	bookID, ok := rc.pathID(c, "bookId")
	if !ok {
		return
	}
	borrowerID, ok := rc.pathID(c, "borrowerId")
	if !ok {
		return
	}
	rec, err := rc.Repo.Borrow(c.Request.Context(), bookID, borrowerID)
	if err != nil {
		rc.fail(c, err)
		return
	}
	rc.Log.Info("book borrowed", "record", rec.ID, "book", bookID, "borrower", borrowerID, "due", rec.DueDate.Format("2006-01-02"))
	c.JSON(http.StatusCreated, rec)
}

// 归还 POST /api/library/records/return/:recordId
func (rc *BorrowRecordController) Return(c *gin.Context) {
	recordID, ok := rc.pathID(c, "recordId")
	if !ok {
		return
	}
	rec, err := rc.Repo.ReturnBook(c.Request.Context(), recordID)
	if err != nil {
		rc.fail(c, err)
		return
	}
	if rec.FineAmount > 0 {
		rc.Log.Info("late return", "record", rec.ID, "fine", rec.FineAmount)
	}
	c.JSON(http.StatusOK, rec)
}

// GET /api/library/records/active
func (rc *BorrowRecordController) Active(c *gin.Context) {
	ls, err := rc.Repo.ActiveRecords(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ls)
}
