package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-ordering/domain"
)

func uintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ValidationError("Invalid %s: %q", name, raw)
	}
	return uint(id), nil
}

func tableNumberParam(c *gin.Context) (int, error) {
	raw := c.Param("tableNumber")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.ValidationError("Invalid table number: %q", raw)
	}
	return n, nil
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return domain.ValidationError("Invalid request body: %s", strings.TrimSpace(err.Error()))
	}
	return nil
}
