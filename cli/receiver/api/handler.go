package api

import (
	"net/http"

	"github.com/daniil11ru/its/libs/its"
	"github.com/gin-gonic/gin"
)

// PositionReader источник последних позиций устройств
type PositionReader interface {
	Latest(imei string) (its.Position, bool)
	All() []its.Position
}

type Handler struct {
	Positions PositionReader
}

func NewHandler(positions PositionReader) *Handler {
	return &Handler{Positions: positions}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetPositions(c *gin.Context) {
	c.JSON(http.StatusOK, h.Positions.All())
}

func (h *Handler) GetPosition(c *gin.Context) {
	imei := c.Param("imei")

	position, ok := h.Positions.Latest(imei)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "нет данных по устройству " + imei})
		return
	}

	c.JSON(http.StatusOK, position)
}
