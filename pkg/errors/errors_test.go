package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/procurement/internal/locale"
)

type state string

func (s state) String() string { return string(s) }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "validation",
			err:      &ValidationError{Fields: map[string]string{"quantity": locale.MsgQuantityInvalid}},
			wantKind: KindValidation,
			wantMsg:  locale.MsgQuantityInvalid,
		},
		{
			name:     "missing catalog item",
			err:      fmt.Errorf("add line: %w", &ErrNotFound{Resource: "item", ID: "4"}),
			wantKind: KindNotFound,
			wantMsg:  locale.MsgItemNotFound,
		},
		{
			name:     "unauthorized",
			err:      &ErrUnauthorized{Message: "no session"},
			wantKind: KindAuth,
			wantMsg:  locale.MsgSessionExpired,
		},
		{
			name:     "deadline",
			err:      fmt.Errorf("do: %w", context.DeadlineExceeded),
			wantKind: KindTransport,
			wantMsg:  locale.MsgTimeout,
		},
		{
			name:     "network",
			err:      fmt.Errorf("dial: %w", timeoutErr{}),
			wantKind: KindTransport,
			wantMsg:  locale.MsgCannotConnect,
		},
		{
			name:     "state transition",
			err:      &ErrInvalidStateTransition{From: state("SUBMITTING"), To: state("SUBMITTING")},
			wantKind: KindValidation,
			wantMsg:  locale.MsgGenericError,
		},
		{
			name:     "unknown",
			err:      stderrors.New("boom"),
			wantKind: KindServer,
			wantMsg:  locale.MsgGenericError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_PassesThroughAPIError(t *testing.T) {
	apiErr := &APIError{Kind: KindServer, Status: http.StatusInternalServerError, Message: locale.MsgServerError}
	assert.Same(t, apiErr, Classify(fmt.Errorf("wrapped: %w", apiErr)))
	assert.Nil(t, Classify(nil))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError()
	assert.NoError(t, verr.OrNil())

	verr.Add("quantity", "first")
	verr.Add("quantity", "second")
	verr.Add("item", "missing")

	require.Error(t, verr.OrNil())
	assert.Equal(t, "first", verr.Fields["quantity"])
	assert.Equal(t, "validation failed: item: missing; quantity: first", verr.Error())
}

func TestKindHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, KindAuth.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, KindTransport.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, KindServer.HTTPStatus())
	assert.Equal(t, "unauthorized", KindAuth.String())
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Kind: KindAuth, Status: 401, Message: "expired", Detail: "login"}
	assert.Equal(t, "expired: login (status 401)", err.Error())
}
