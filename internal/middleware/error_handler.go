package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/navipay/port-requests/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MapError translates domain and database errors into HTTP responses.
// Domain sentinels take precedence; raw pgx errors only reach this point
// when a repository did not map them itself.
func MapError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "resource not found", Details: err.Error()}
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "forbidden", Details: err.Error()}
	case errors.Is(err, apperr.ErrInvalidTransition):
		return http.StatusConflict, ErrorResponse{Error: "invalid state transition", Details: err.Error()}
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, ErrorResponse{Error: "resource already exists", Details: err.Error()}
	case errors.Is(err, apperr.ErrInvalidAmount):
		return http.StatusBadRequest, ErrorResponse{Error: "invalid amount", Details: err.Error()}
	case errors.Is(err, apperr.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType, ErrorResponse{Error: "unsupported file", Details: err.Error()}
	case errors.Is(err, apperr.ErrConfigMissing):
		log.Error().Err(err).Msg("billing configuration missing")
		return http.StatusInternalServerError, ErrorResponse{Error: "billing configuration unavailable"}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, ErrorResponse{Error: "resource not found"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return http.StatusConflict, ErrorResponse{
				Error:   "resource already exists",
				Details: pgErr.Detail,
			}
		case "23503": // foreign_key_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "referenced resource does not exist",
				Details: pgErr.Detail,
			}
		case "23514": // check_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "constraint violation",
				Details: pgErr.Detail,
			}
		}
	}

	log.Error().Err(err).Msg("unhandled error")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			status, resp := MapError(err)
			c.JSON(status, resp)
		}
	}
}
