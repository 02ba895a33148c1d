package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// DBPinger is satisfied by *sql.DB.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and dependency readiness.
type HealthHandler struct {
	db    DBPinger
	redis redis.UniversalClient
	env   string
}

// NewHealthHandler creates a HealthHandler. A nil redis client is skipped,
// which is the case when slot locks are held in process.
func NewHealthHandler(db DBPinger, rdb redis.UniversalClient, env string) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, env: env}
}

type LivenessResponse struct {
	Status string `json:"status"`
	Env    string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{Status: "ok", Env: h.env})
}

// Readiness pings the database and Redis. The database being down makes the
// instance unready; Redis being down only degrades it.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	status := "ok"

	dbCtx, dbCancel := context.WithTimeout(ctx, time.Second)
	err := h.db.PingContext(dbCtx)
	dbCancel()
	if err != nil {
		deps["database"] = "down"
		status = "error"
	} else {
		deps["database"] = "ok"
	}

	if h.redis != nil {
		redisCtx, redisCancel := context.WithTimeout(ctx, time.Second)
		err = h.redis.Ping(redisCtx).Err()
		redisCancel()
		if err != nil {
			deps["redis"] = "down"
			if status == "ok" {
				status = "degraded"
			}
		} else {
			deps["redis"] = "ok"
		}
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, ReadinessResponse{Status: status, Env: h.env, Dependencies: deps})
}
