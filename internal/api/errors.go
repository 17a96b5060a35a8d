package api

import (
	"errors"
	"net/http"

	"token-launchpad/internal/launchpad"
	"token-launchpad/internal/storage"
)

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps workflow errors to HTTP statuses.
func statusFor(err error) (int, string) {
	var uploadErr *launchpad.UploadError
	var submitErr *launchpad.SubmitError

	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, launchpad.ErrMissingField),
		errors.Is(err, launchpad.ErrInvalidAmount),
		errors.Is(err, launchpad.ErrInvalidDecimals),
		errors.Is(err, launchpad.ErrWalletNotConnected):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, launchpad.ErrWalletCapability):
		return http.StatusConflict, "wallet_capability"
	case errors.Is(err, launchpad.ErrSignatureRejected):
		return http.StatusConflict, "signature_rejected"
	case errors.Is(err, launchpad.ErrUnknownToken):
		return http.StatusNotFound, "unknown_token"
	case errors.Is(err, launchpad.ErrPendingNotFound):
		return http.StatusNotFound, "pending_not_found"
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &uploadErr):
		return http.StatusBadGateway, "upload_failed"
	case errors.Is(err, launchpad.ErrTransactionFailed):
		return http.StatusBadGateway, "transaction_failed"
	case errors.As(err, &submitErr):
		return http.StatusBadGateway, "submit_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}
