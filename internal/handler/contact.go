package handler

import (
	"net/http"

	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

func (h *ContactHandler) Submit(c echo.Context) error {
	var req dto.ContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	message, err := h.contactService.Submit(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, message)
}

func (h *ContactHandler) List(c echo.Context) error {
	messages, err := h.contactService.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messages)
}

func (h *ContactHandler) MarkRead(c echo.Context) error {
	if err := h.contactService.MarkRead(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Message marked as read"})
}
