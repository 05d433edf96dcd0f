package handler

import (
	"hosting-storefront/internal/apperror"

	"github.com/labstack/echo/v4"
)

// bindAndValidate decodes the request body into req and runs the struct
// validation tags.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperror.BadRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return apperror.BadRequest("%s", err.Error())
	}
	return nil
}
