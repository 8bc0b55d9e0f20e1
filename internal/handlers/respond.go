package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tailor-backend/internal/auth"
	"tailor-backend/internal/docstore"
	"tailor-backend/internal/logger"
	"tailor-backend/internal/services"
	"tailor-backend/pkg/utils"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// userID returns the caller's id. Routes using it sit behind Authenticate.
func userID(r *http.Request) string {
	return auth.FromContext(r.Context()).UserID()
}

// writeError maps service and store errors to HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	if se, ok := services.AsStepError(err); ok && len(se.Completed) > 0 {
		log.Error("partial mutation", zap.String("op", se.Op), zap.Strings("completed", se.Completed), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, utils.ErrorBody{
			Error:   se.Op + " stopped part-way: " + se.Failed + " failed",
			Code:    "partial",
			Details: se.Completed,
		})
		return
	}

	switch {
	case services.IsValidation(err):
		utils.JSON(w, http.StatusBadRequest, utils.ErrorBody{Error: err.Error(), Code: "validation"})
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		utils.Error(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		status, code := statusFor(docstore.CodeOf(err))
		if status >= 500 {
			log.Error("request failed", zap.Error(err))
		}
		utils.JSON(w, status, utils.ErrorBody{Error: messageFor(status, err), Code: code})
	}
}

func statusFor(code docstore.Code) (int, string) {
	switch code {
	case docstore.CodeNotFound:
		return http.StatusNotFound, string(code)
	case docstore.CodePermissionDenied:
		return http.StatusForbidden, string(code)
	case docstore.CodeInvalidArgument:
		return http.StatusBadRequest, string(code)
	case docstore.CodeUnavailable:
		return http.StatusServiceUnavailable, string(code)
	}
	return http.StatusInternalServerError, "internal"
}

func messageFor(status int, err error) string {
	switch status {
	case http.StatusNotFound:
		return "Not found"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusServiceUnavailable:
		return "Store unavailable"
	}
	return "Internal server error"
}
