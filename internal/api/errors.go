package api

import (
	"context"

	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// ToStatus converts a domain error into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := grpcstatus.FromError(err); ok {
		return err
	}
	return grpcstatus.Error(codeOf(err), err.Error())
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, chat.ErrUnauthorized):
		return codes.PermissionDenied
	case errors.Is(err, chat.ErrValidation), errors.Is(err, store.ErrInvalidStatus):
		return codes.InvalidArgument
	case errors.Is(err, chat.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, chat.ErrFeedDisconnected):
		return codes.Aborted
	case errors.Is(err, chat.ErrTransient):
		return codes.Unavailable
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// FromStatus converts a gRPC status error back into the chat taxonomy so
// callers can match it with errors.Is. Unknown codes are returned as is.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := grpcstatus.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.PermissionDenied:
		return errors.Wrap(chat.ErrUnauthorized, st.Message())
	case codes.InvalidArgument:
		return errors.Wrap(chat.ErrValidation, st.Message())
	case codes.NotFound:
		return errors.Wrap(chat.ErrNotFound, st.Message())
	case codes.Aborted:
		return errors.Wrap(chat.ErrFeedDisconnected, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return chat.Transient("rpc", err)
	case codes.Canceled:
		return errors.Wrap(context.Canceled, st.Message())
	default:
		return err
	}
}
