package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/types"
	"github.com/solatis/formkeeper/internal/validation"
)

// ValidationServer implements FormValidationServer over the form service.
type ValidationServer struct {
	UnimplementedFormValidationServer
	svc *api.Service
}

// NewValidationServer creates the gRPC validation service.
func NewValidationServer(svc *api.Service) (*ValidationServer, error) {
	if svc == nil {
		return nil, fmt.Errorf("svc cannot be nil")
	}
	return &ValidationServer{svc: svc}, nil
}

// Validate checks the submitted data without storing it.
func (s *ValidationServer) Validate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	slug, data, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	errs, err := s.svc.Validate(ctx, slug, data)
	if err != nil {
		return nil, api.GRPCError(err)
	}

	grouped := make(map[string]any)
	for _, stepID := range errs.Steps() {
		grouped[stepID] = errorMap(errs.Step(stepID))
	}
	return newStruct(map[string]any{
		"valid":  errs.IsEmpty(),
		"errors": grouped,
		"fields": errorMap(errs.Flatten()),
	})
}

// Visibility reports which steps and fields are shown for the data.
func (s *ValidationServer) Visibility(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	slug, data, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	vm, err := s.svc.Visibility(ctx, slug, data)
	if err != nil {
		return nil, api.GRPCError(err)
	}
	return newStruct(map[string]any{
		"steps":  boolMap(vm.Steps),
		"fields": boolMap(vm.Fields),
	})
}

func decodeRequest(in *structpb.Struct) (string, types.Values, error) {
	fields := in.GetFields()
	slug := fields["form"].GetStringValue()
	if slug == "" {
		return "", nil, status.Error(codes.InvalidArgument, "form is required")
	}
	data, err := types.ValuesFromMap(fields["data"].GetStructValue().AsMap())
	if err != nil {
		return "", nil, api.GRPCError(err)
	}
	return slug, data, nil
}

// errorMap converts messages to the value types structpb accepts.
func errorMap(errs validation.ValidationErrors) map[string]any {
	out := make(map[string]any, len(errs))
	for field, msgs := range errs {
		list := make([]any, len(msgs))
		for i, m := range msgs {
			list[i] = m
		}
		out[field] = list
	}
	return out
}

func boolMap(m map[string]bool) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
