package handler

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"github.com/gdsanger/KManager-sub000/internal/apierror"
	"github.com/gdsanger/KManager-sub000/internal/middleware"
	"github.com/gdsanger/KManager-sub000/internal/model"
	"github.com/gdsanger/KManager-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.BadRequest("Ungültiges JSON: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.BadRequest("Ungültige Parameter: "+err.Error()))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramUUID parses a path parameter; writes 400 and returns false on garbage.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.BadRequest("Ungültige ID"))
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional query parameter. Empty yields uuid.Nil.
func queryUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.BadRequest("Ungültiger Parameter "+name))
		return uuid.Nil, false
	}
	return id, true
}

// requestContext carries the authenticated subject into the service layer,
// where it ends up as the actor of activity entries.
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if claims := middleware.ClaimsFrom(c); claims != nil && claims.Actor() != "" {
		ctx = service.WithActor(ctx, claims.Actor())
	}
	return ctx
}

// respondError maps service errors to status codes. Unknown errors become a
// generic 500 so database details never reach the client.
func respondError(c *gin.Context, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{ve.Field: ve.Message}))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(apierror.CodeValidation, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.NotFound(err.Error()))
	case errors.Is(err, service.ErrDocumentLocked):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeDocumentLocked, err.Error()))
	case errors.Is(err, service.ErrDuplicate), errors.Is(err, service.ErrContractInactive):
		c.JSON(http.StatusConflict, apierror.New(apierror.CodeConflict, err.Error()))
	case errors.Is(err, service.ErrZeroTaxRateMissing):
		log.Error().Err(err).Str("path", c.FullPath()).Msg("tax configuration incomplete")
		c.JSON(http.StatusInternalServerError, apierror.New(apierror.CodeConfiguration, "Konfigurationsfehler: "+err.Error()))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("unhandled service error")
		c.JSON(http.StatusInternalServerError, apierror.Internal())
	}
}
