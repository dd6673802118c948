package routes

import (
	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/controllers"
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	bookCtl := controllers.NewBookController(s)
	borrowerCtl := controllers.NewBorrowerController(s)
	recordCtl := controllers.NewBorrowRecordController(s)

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	lib := r.Group("/api/library")

	// ------------------------------
	// 书目
	// ------------------------------
	books := lib.Group("/books")
	{
		books.POST("", bookCtl.CreateOrIncrease)
		books.GET("", bookCtl.List) // ?category=&available=&page=&size=&sortBy=&dir=
		books.PUT("/:id", bookCtl.Update)
		books.DELETE("/:id", bookCtl.Delete)
	}

	// ------------------------------
	// 借阅人
	// ------------------------------
	borrowers := lib.Group("/borrowers")
	{
		borrowers.POST("", borrowerCtl.Register)
		borrowers.GET("/:id", borrowerCtl.Get)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	records := lib.Group("/records")
	{
		records.POST("/borrow/:bookId/:borrowerId", recordCtl.Borrow)
		records.POST("/return/:recordId", recordCtl.Return)
		records.GET("/active", recordCtl.Active)
	}
}
