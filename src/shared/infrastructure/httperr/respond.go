package httperr

import (
	"net/http"

	"caja/src/shared/domain/apperror"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Respond escribe el error clasificado como {"error": ..., "code": ...}
func Respond(ctx *gin.Context, log logrus.FieldLogger, op string, err error) {
	code, status := apperror.Classify(err)
	entry := log.WithError(err).WithFields(logrus.Fields{
		"op":   op,
		"code": code,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("operation failed")
	} else {
		entry.Info("operation rejected")
	}
	ctx.JSON(status, gin.H{
		"error": err.Error(),
		"code":  code,
	})
}

// BadRequest responde un 400 de validación por un body o parámetro mal formado
func BadRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error": message,
		"code":  apperror.CodeValidation,
	})
}
