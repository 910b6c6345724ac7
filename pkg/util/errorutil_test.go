package util_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/permit-service/internal/domain"
	"github.com/spec-kit/permit-service/pkg/util"
)

func TestToDomainError_Mapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "validation",
			err:        domain.NewValidationError("mall_id is required"),
			wantCode:   "VALIDATION_FAILED",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			err:        &domain.NotFoundError{PermitID: "p-1"},
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "forbidden",
			err:        &domain.ForbiddenError{Role: domain.RoleTenantUser, Operation: "approve"},
			wantCode:   "FORBIDDEN",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "invalid transition",
			err:        &domain.InvalidTransitionError{Event: domain.EventApprove, Current: domain.PermitStatusCompleted},
			wantCode:   "INVALID_TRANSITION",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "write conflict",
			err:        &domain.ConflictError{PermitID: "p-1", Expected: domain.PermitStatusPendingApproval},
			wantCode:   "CONFLICT",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown",
			err:        errors.New("pool exhausted"),
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := util.ToDomainError(tc.err)
			require.Equal(t, tc.wantCode, mapped.Code)
			require.Equal(t, tc.wantStatus, mapped.HTTPStatus)
			require.NotEmpty(t, mapped.Message)
		})
	}
}

func TestToDomainError_CarriesDetails(t *testing.T) {
	mapped := util.ToDomainError(&domain.NotFoundError{PermitID: "p-1"})
	require.Equal(t, "p-1", mapped.Details["permit_id"])

	mapped = util.ToDomainError(&domain.InvalidTransitionError{Event: domain.EventCancel, Current: domain.PermitStatusRejected})
	require.Equal(t, domain.PermitStatusRejected, mapped.Details["current_status"])
	require.Equal(t, domain.EventCancel, mapped.Details["operation"])
}

func TestToDomainError_PassThroughAndNil(t *testing.T) {
	require.Nil(t, util.ToDomainError(nil))

	original := util.NewDomainError("TEAPOT", "short and stout", http.StatusTeapot, nil)
	require.Same(t, original, util.ToDomainError(original))

	// Unknown errors must not leak their message to clients.
	mapped := util.ToDomainError(errors.New("dsn=postgres://secret"))
	require.Equal(t, "internal server error", mapped.Message)
	require.ErrorContains(t, mapped, "dsn=")
}
