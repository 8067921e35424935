package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fd1az/synthetic-orderbook/internal/apperror"
	"github.com/fd1az/synthetic-orderbook/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders err as the AppError response body. Non-AppErrors
// become INTERNAL_ERROR.
func writeError(ctx context.Context, w http.ResponseWriter, log logger.LoggerInterface, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(apperror.CodeInternalError, "http", err)
	}

	if id := RequestID(ctx); id != "" {
		appErr = appErr.WithTraceID(id)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Errorc(ctx, 4, "request failed", appErr.LogArgs()...)
	} else {
		log.Infoc(ctx, 4, "request rejected", appErr.LogArgs()...)
	}

	body := appErr.ToResponse()
	body["success"] = false
	writeJSON(w, appErr.StatusCode, body)
}
