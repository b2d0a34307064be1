package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/iho/leaveledger/internal/adapter/http/dto"
	"github.com/iho/leaveledger/internal/adapter/http/middleware"
	"github.com/iho/leaveledger/internal/domain"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes {"error": message, "message": details}.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Message: details})
}

func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, mapDomainError(err), message, err.Error())
}

// errorStatuses is checked in order; the first match wins.
var errorStatuses = []struct {
	status int
	errs   []error
}{
	{http.StatusNotFound, []error{
		domain.ErrRequestNotFound, domain.ErrBalanceNotFound, domain.ErrVariantNotFound,
		domain.ErrWorkflowNotFound, domain.ErrEmployeeNotFound,
	}},
	{http.StatusConflict, []error{domain.ErrInvalidTransition}},
	{http.StatusUnprocessableEntity, []error{domain.ErrInsufficientBalance, domain.ErrMissingConfiguration}},
	{http.StatusForbidden, []error{domain.ErrNotAuthorizedApprover, domain.ErrActionNotPermitted}},
	{http.StatusUnauthorized, []error{domain.ErrUnauthorized, domain.ErrInvalidToken, domain.ErrExpiredToken}},
	{http.StatusBadRequest, []error{
		domain.ErrInvalidAmount, domain.ErrInvalidTransactionType, domain.ErrInvalidDateRange,
		domain.ErrDateRangeTooLong, domain.ErrInvalidRequestKind, domain.ErrReasonRequired,
		domain.ErrReasonTooLong, domain.ErrMissingField,
	}},
	{http.StatusServiceUnavailable, []error{domain.ErrEmployeeDirectoryUnavailable}},
}

func mapDomainError(err error) int {
	for _, entry := range errorStatuses {
		for _, target := range entry.errs {
			if errors.Is(err, target) {
				return entry.status
			}
		}
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// actorFrom returns the authenticated actor, writing 401 when there is none.
func actorFrom(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no actor on request")
		return domain.Actor{}, false
	}
	return actor, true
}

// requireRole writes 403 unless actor holds one of roles.
func requireRole(w http.ResponseWriter, actor domain.Actor, roles ...string) bool {
	if actor.IsSystem() {
		return true
	}
	for _, role := range roles {
		if actor.HasRole(role) {
			return true
		}
	}
	writeError(w, http.StatusForbidden, "insufficient permissions", "")
	return false
}

// parseYear accepts a four digit leave year.
func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1000 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}

// page reads ?limit= and ?offset=, ignoring malformed values.
func page(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return limit, offset
}
