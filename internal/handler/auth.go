package handler

import (
	"net/http"

	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/middleware"
	"hosting-storefront/internal/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.authService.Me(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}
