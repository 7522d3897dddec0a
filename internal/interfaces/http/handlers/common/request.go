// Package common provides shared HTTP handler utilities.
package common

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/constants"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
)

// ParseIDParam reads a positive numeric path parameter.
func ParseIDParam(c *gin.Context, name, entity string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("Invalid " + entity + " ID")
	}
	return uint(id), nil
}

// Principal returns the authenticated caller or an unauthorized error.
func Principal(c *gin.Context) (authorization.Principal, error) {
	p, ok := authorization.GetPrincipal(c)
	if !ok {
		return authorization.Principal{}, errors.NewUnauthorizedError("user not authenticated")
	}
	return p, nil
}

// SocketID is the caller's realtime socket, excluded from echoes of its own actions.
func SocketID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(constants.HeaderXSocketID))
}
