package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/service"
)

type bookingRequest struct {
	Name     string    `json:"name" binding:"required,max=100"`
	Email    string    `json:"email" binding:"required,email,max=100"`
	Phone    string    `json:"phone" binding:"max=20"`
	Service  string    `json:"service" binding:"required"`
	DateTime time.Time `json:"dateTime" binding:"required"`
	Message  string    `json:"message" binding:"max=1000"`
}

type bookingResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Service   string    `json:"service"`
	DateTime  time.Time `json:"dateTime"`
	Message   string    `json:"message"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"createdAt"`
}

func newBookingResponse(booking db.Booking) bookingResponse {
	return bookingResponse{
		ID:        booking.ID,
		Name:      booking.Name,
		Email:     booking.Email,
		Phone:     booking.Phone,
		Service:   booking.Service,
		DateTime:  booking.DateTime,
		Message:   booking.Message,
		Confirmed: booking.Confirmed,
		CreatedAt: booking.CreatedAt,
	}
}

func newBookingResponses(bookings []db.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, newBookingResponse(booking))
	}
	return out
}

// CreateBooking 访客提交预约
func (a *API) CreateBooking(c *gin.Context) {
	var req bookingRequest
	if !bindJSON(c, &req, "name, a valid email, service and dateTime are required") {
		return
	}

	booking, err := a.bookings.Create(c.Request.Context(), service.BookingInput{
		Name:     plainText(req.Name),
		Email:    req.Email,
		Phone:    plainText(req.Phone),
		Service:  plainText(req.Service),
		DateTime: req.DateTime,
		Message:  plainText(req.Message),
	})
	if err != nil {
		respondServiceError(c, err, "failed to create booking")
		return
	}

	c.JSON(http.StatusOK, newBookingResponse(*booking))
}

// GetUpcomingBookings 未来一个月内的预约
func (a *API) GetUpcomingBookings(c *gin.Context) {
	bookings, err := a.bookings.Upcoming(c.Request.Context(), a.now())
	if err != nil {
		respondServiceError(c, err, "failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, newBookingResponses(bookings))
}

// GetUnconfirmedBookings 尚未确认的预约
func (a *API) GetUnconfirmedBookings(c *gin.Context) {
	bookings, err := a.bookings.Unconfirmed(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, newBookingResponses(bookings))
}

// GetBookingsByEmail 按邮箱查询预约
func (a *API) GetBookingsByEmail(c *gin.Context) {
	bookings, err := a.bookings.ByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondServiceError(c, err, "failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, newBookingResponses(bookings))
}

// ConfirmBooking 确认预约
func (a *API) ConfirmBooking(c *gin.Context) {
	booking, err := a.bookings.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "failed to confirm booking")
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(*booking))
}

// CancelBooking 取消预约
func (a *API) CancelBooking(c *gin.Context) {
	if err := a.bookings.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "failed to cancel booking")
		return
	}
	c.Status(http.StatusNoContent)
}
