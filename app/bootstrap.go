// app/bootstrap.go
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"Gin_postgres_redis_library/db"
)

// SeedBook is one entry of a catalog seed file (a JSON array).
type SeedBook struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Category        string `json:"category"`
	TotalCopies     int    `json:"totalCopies"`
	AvailableCopies *int   `json:"availableCopies"` // 缺省时等于 totalCopies
}

// SeedCatalog 逐条走 CreateOrIncreaseBook，重复导入会累加副本数。
// 单条失败只记录日志，返回成功/失败条数。
func SeedCatalog(ctx context.Context, repo *db.Repo, r io.Reader) (ok, failed int, err error) {
	var entries []SeedBook
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, 0, fmt.Errorf("decode seed file: %w", err)
	}
	for _, e := range entries {
		avail := e.TotalCopies
		if e.AvailableCopies != nil {
			avail = *e.AvailableCopies
		}
		b, err := repo.CreateOrIncreaseBook(ctx, db.BookIntake{
			Title:           e.Title,
			Author:          e.Author,
			Category:        e.Category,
			TotalCopies:     e.TotalCopies,
			AvailableCopies: avail,
		})
		if err != nil {
			slog.Warn("seed book failed", "title", e.Title, "err", err)
			failed++
			continue
		}
		slog.Debug("seeded book", "id", b.ID, "title", b.Title, "total", b.TotalCopies)
		ok++
	}
	return ok, failed, nil
}
