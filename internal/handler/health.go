package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/mathachew7/JoslaSync/internal/infrastructure/redis"
	"github.com/mathachew7/JoslaSync/pkg/database"
)

// Health reports process liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Ready reports readiness: the master database must answer, and redis when
// configured. The cache being down degrades performance, not correctness,
// but readiness still flags it so operators notice.
func Ready(master *sql.DB, cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := database.Health(ctx, master); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("master database not ready"))
			return
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("redis not ready"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	}
}
