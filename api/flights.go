package api

import (
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/httpx"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

// Register mounts the flight routes on router. Everything except search is
// guarded by admin.
func (h *FlightHandler) Register(router *gin.RouterGroup, admin gin.HandlerFunc) {
	router.GET("/search", h.search)

	guarded := router.Group("", admin)
	guarded.GET("", h.list)
	guarded.POST("/add", h.add)
	guarded.GET("/edit/:id", h.get)
	guarded.POST("/edit/:id", h.update)
	guarded.POST("/delete/:id", h.delete)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) add(c *gin.Context) {
	var in flights.FlightInput
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, err)
		return
	}
	flight, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	httpx.Success(c, http.StatusCreated, httpx.StatusAdded, flight)
}

func (h *FlightHandler) update(c *gin.Context) {
	var in flights.FlightInput
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, err)
		return
	}
	flight, err := h.service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	httpx.Success(c, http.StatusOK, httpx.StatusUpdated, flight)
}

func (h *FlightHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	httpx.Success(c, http.StatusOK, httpx.StatusDeleted, gin.H{"id": id})
}

func (h *FlightHandler) search(c *gin.Context) {
	var q flights.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
