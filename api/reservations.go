package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/Domenick1991/flightdesk/internal/boardingpass"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/httpx"
	"github.com/Domenick1991/flightdesk/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service booking.BookingUseCase
}

func NewReservationHandler(service booking.BookingUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// Register mounts the reservation routes. Booking management requires a
// signed-in user, check-in and boarding passes are public and pass through
// limit.
func (h *ReservationHandler) Register(router *gin.RouterGroup, signedIn, limit gin.HandlerFunc) {
	authed := router.Group("", signedIn)
	authed.GET("/book", h.bookingForm)
	authed.POST("/book", h.book)
	authed.GET("/list", h.list)
	authed.GET("/edit/:id", h.editView)
	authed.POST("/edit/:id", h.update)
	authed.POST("/delete/:id", h.cancel)

	router.GET("/checkin", h.checkInForm)
	public := router.Group("", limit)
	public.POST("/api/checkin", h.checkIn)
	public.GET("/boarding-pass/:bookingId", h.boardingPass)
}

func (h *ReservationHandler) bookingForm(c *gin.Context) {
	form, err := h.service.BookingForm(c.Request.Context(), c.Query("depart"), c.Query("return"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *ReservationHandler) book(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	var in booking.BookInput
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, err)
		return
	}
	r, err := h.service.Book(c.Request.Context(), user, in)
	if err != nil {
		respondError(c, err)
		return
	}
	httpx.Success(c, http.StatusCreated, httpx.StatusAdded, r)
}

func (h *ReservationHandler) list(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	views, err := h.service.List(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *ReservationHandler) editView(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	view, err := h.service.EditView(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ReservationHandler) update(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	var in booking.UpdateInput
	if err := c.ShouldBind(&in); err != nil {
		bindError(c, err)
		return
	}
	r, err := h.service.Update(c.Request.Context(), user, c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	httpx.Success(c, http.StatusOK, httpx.StatusUpdated, r)
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	r, err := h.service.Cancel(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	httpx.Success(c, http.StatusOK, httpx.StatusCancelled, r)
}

func (h *ReservationHandler) checkInForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":  "Online Check-In",
		"fields": []string{"bookingId", "lastName"},
	})
}

type checkInRequest struct {
	BookingID string `json:"bookingId" form:"bookingId"`
	LastName  string `json:"lastName" form:"lastName"`
}

const (
	checkInMissingFields = "Booking ID and last name are required."
	checkInNotFound      = "Reservation not found."
	checkInCancelled     = "This reservation has been cancelled."
	checkInNameMismatch  = "Last name does not match our records."
	checkInServerError   = "Server error during check-in."
)

// checkIn answers with {message, bookingId, seat, boardingPassNumber} or
// {error} rather than the usual envelope.
func (h *ReservationHandler) checkIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": checkInMissingFields})
		return
	}
	res, err := h.service.CheckIn(c.Request.Context(), req.BookingID, req.LastName)
	if err != nil {
		status, msg := checkInError(err)
		if status == http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, res)
}

func checkInError(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, checkInMissingFields
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, checkInNotFound
	case errors.Is(err, domain.ErrCancelled):
		return http.StatusConflict, checkInCancelled
	case errors.Is(err, booking.ErrLastNameMismatch):
		return http.StatusForbidden, checkInNameMismatch
	default:
		return http.StatusInternalServerError, checkInServerError
	}
}

func (h *ReservationHandler) boardingPass(c *gin.Context) {
	pass, err := h.service.BoardingPass(c.Request.Context(), c.Param("bookingId"), c.Query("lastName"))
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := boardingpass.Render(&buf, pass.Reservation, pass.Flight); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+boardingpass.Filename(pass.Reservation.BookingID)+`"`)
	c.Data(http.StatusOK, boardingpass.ContentType, buf.Bytes())
}
