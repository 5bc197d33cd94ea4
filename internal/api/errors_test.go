package api

import (
	"context"
	"fmt"
	"testing"

	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

func TestStatusRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     codes.Code
		sentinel error
	}{
		{"unauthorized", errors.Wrap(chat.ErrUnauthorized, "application app1 is applied"), codes.PermissionDenied, chat.ErrUnauthorized},
		{"validation", errors.WithStack(chat.ErrValidation), codes.InvalidArgument, chat.ErrValidation},
		{"invalid status", fmt.Errorf("%w %q", store.ErrInvalidStatus, "promoted"), codes.InvalidArgument, chat.ErrValidation},
		{"not found", errors.Wrap(chat.ErrNotFound, "application x"), codes.NotFound, chat.ErrNotFound},
		{"transient", chat.Transient("insert message", errors.New("database is locked")), codes.Unavailable, chat.ErrTransient},
		{"feed", errors.Wrap(chat.ErrFeedDisconnected, "subscribe"), codes.Aborted, chat.ErrFeedDisconnected},
		{"canceled", context.Canceled, codes.Canceled, context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ToStatus(tt.err)
			require.Equal(t, tt.code, grpcstatus.Code(st))
			require.ErrorIs(t, FromStatus(st), tt.sentinel)
		})
	}
}

func TestToStatusPassesThrough(t *testing.T) {
	require.NoError(t, ToStatus(nil))
	require.NoError(t, FromStatus(nil))

	orig := grpcstatus.Error(codes.FailedPrecondition, "x")
	require.Equal(t, orig, ToStatus(orig))
	require.Equal(t, codes.Internal, grpcstatus.Code(ToStatus(errors.New("boom"))))

	plain := errors.New("not a status")
	require.Equal(t, plain, FromStatus(plain))
}
