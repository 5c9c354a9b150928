package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/service"
	"github.com/rs/zerolog/log"
)

var kindStatus = map[service.ErrorKind]int{
	service.KindBadRequest:      http.StatusBadRequest,
	service.KindUnauthenticated: http.StatusUnauthorized,
	service.KindForbidden:       http.StatusForbidden,
	service.KindNotFound:        http.StatusNotFound,
	service.KindInvalidState:    http.StatusBadRequest,
	service.KindExpired:         http.StatusBadRequest,
	service.KindConflict:        http.StatusConflict,
	service.KindStorage:         http.StatusInternalServerError,
	service.KindUpstream:        http.StatusBadGateway,
}

// StatusForKind maps an error kind onto its HTTP status.
func StatusForKind(kind service.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondError writes the failure envelope for err.
func RespondError(c *gin.Context, err error) {
	resp := dto.ErrorResponse{Status: "fail"}

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		resp.Code = string(svcErr.Kind)
		resp.Message = svcErr.Message
		if svcErr.Data != nil {
			if fields, ok := svcErr.Data["fields"].([]string); ok {
				resp.Details = fields
			} else {
				resp.Data = svcErr.Data
			}
		}
	} else {
		resp.Code = string(service.KindStorage)
		resp.Message = "internal server error"
	}

	status := StatusForKind(service.ErrorKind(resp.Code))
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Str("code", resp.Code).Msg("RespondError: Request failed")
	}
	c.JSON(status, resp)
}

// RespondBindingError writes a bad_request envelope for a body that failed
// to bind or validate.
func RespondBindingError(c *gin.Context, err error) {
	log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("RespondBindingError: Invalid request body")
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Status:  "fail",
		Code:    string(service.KindBadRequest),
		Message: "Invalid request body",
		Details: BindingDetails(err),
	})
}

func BindingDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return details
}

// ParseIDParam reads a positive integer path parameter.
func ParseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, &service.Error{Kind: service.KindBadRequest, Message: fmt.Sprintf("invalid %s: %q", name, raw)}
	}
	return uint(id), nil
}
