// controllers/srv.go
package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/cache"
	"Gin_postgres_redis_library/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Srv struct {
	Repo      *db.Repo
	Borrowers *cache.BorrowerCache
	Log       *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      db.NewRepo(a.DB),
		Borrowers: a.Borrowers(),
		Log:       a.Logger,
	}
}

// --- helpers ---

// pathID 读取并校验 UUID 路径参数；失败时已写好 400
func (s *Srv) pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid " + name})
		return "", false
	}
	return id, true
}

// fail 把业务错误映射为 HTTP 状态码：NotFound=404，Validation/Conflict=400，其余 500
func (s *Srv) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrValidation), errors.Is(err, db.ErrConflict):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	default:
		s.Log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error"})
	}
}
