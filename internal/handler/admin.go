package handler

import (
	"net/http"
	"strconv"

	"github.com/crisgp1/orodetamar-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// AdminHandler inspects and replays the email dead letter queue.
type AdminHandler struct{ rdb *redis.Client }

func NewAdminHandler(rdb *redis.Client) *AdminHandler {
	return &AdminHandler{rdb: rdb}
}

func (h *AdminHandler) EstadoDLQ(c *gin.Context) {
	n, err := worker.DLQLength(c.Request.Context(), h.rdb, worker.QueueEmail)
	if err != nil {
		respondError(c, err, "Error al consultar la cola de errores")
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": worker.QueueEmail, "pendientes": n})
}

func (h *AdminHandler) ReintentarDLQ(c *gin.Context) {
	max, err := strconv.Atoi(c.DefaultQuery("max", "50"))
	if err != nil || max <= 0 {
		max = 50
	}
	moved, err := worker.ReplayDLQ(c.Request.Context(), h.rdb, worker.QueueEmail, max)
	if err != nil {
		respondError(c, err, "Error al reencolar trabajos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": worker.QueueEmail, "reencolados": moved})
}
