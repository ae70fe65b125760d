package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/iwtcode/cncSimulator/pkg/errors"

	"github.com/gin-gonic/gin"
)

// StartSimulation запускает симуляцию флота.
// Повторный запуск уже идущей симуляции возвращает 409.
func (h *Handler) StartSimulation(c *gin.Context) {
	h.logger.Info("Attempting to start simulation")

	if err := h.usecase.StartSimulation(); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyRunning) {
			h.Conflict(c, err, "Simulation is already running")
			return
		}
		h.InternalError(c, err)
		return
	}

	h.logger.Info("Simulation started successfully")
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Simulation started",
	})
}

// StopSimulation останавливает симуляцию. Остановка незапущенной
// симуляции — no-op, ответ остается успешным.
func (h *Handler) StopSimulation(c *gin.Context) {
	h.logger.Info("Attempting to stop simulation")

	if err := h.usecase.StopSimulation(); err != nil {
		h.InternalError(c, err)
		return
	}

	h.logger.Info("Simulation stopped")
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Simulation stopped",
	})
}

// SimulationStatus возвращает моментальный снимок метрик симуляции.
func (h *Handler) SimulationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"metrics": h.usecase.GetMetrics(),
	})
}

// GetMachines возвращает список станков флота с текущим состоянием.
func (h *Handler) GetMachines(c *gin.Context) {
	machines := h.usecase.GetMachines()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"count":    len(machines),
		"machines": machines,
	})
}
