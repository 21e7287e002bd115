package grpc

import (
	"context"
	"encoding/json"

	"github.com/vibast-solutions/ms-go-users/app/apperror"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func decodeRequest(in *structpb.Struct, dst any) error {
	payload, err := protojson.Marshal(in)
	if err != nil {
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	if err = json.Unmarshal(payload, dst); err != nil {
		return status.Error(codes.InvalidArgument, "invalid request")
	}
	return nil
}

func encodeResponse(v any) (*structpb.Struct, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal grpc response")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	out := &structpb.Struct{}
	if err = protojson.Unmarshal(payload, out); err != nil {
		logrus.WithError(err).Error("Failed to convert grpc response")
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

// toStatus maps a service error onto a gRPC status, logging it the way the
// HTTP error handler does.
func toStatus(ctx context.Context, method string, err error) error {
	appErr := apperror.From(err)
	code := appErr.GRPCCode()

	entry := logrus.WithFields(logrus.Fields{
		"method": method,
		"code":   code.String(),
	})
	if code == codes.Internal {
		entry.WithError(err).Error("Request failed (grpc)")
	} else {
		entry.WithField("reason", appErr.Message).Warn("Request rejected (grpc)")
	}

	if ctx.Err() != nil {
		return status.FromContextError(ctx.Err()).Err()
	}
	return status.Error(code, appErr.Message)
}
