package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// FormValidationServer is the server API of formkeeper.v1.FormValidation.
//
// Requests and responses are google.protobuf.Struct so the service needs
// no generated code:
//
//	Validate:   {"form": slug, "data": {...}} -> {"valid": bool, "errors": {...}, "fields": {...}}
//	Visibility: {"form": slug, "data": {...}} -> {"steps": {...}, "fields": {...}}
type FormValidationServer interface {
	Validate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Visibility(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedFormValidationServer can be embedded for forward compatibility.
type UnimplementedFormValidationServer struct{}

func (UnimplementedFormValidationServer) Validate(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Validate not implemented")
}

func (UnimplementedFormValidationServer) Visibility(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Visibility not implemented")
}

const (
	formValidationService = "formkeeper.v1.FormValidation"
	validateMethod        = "/" + formValidationService + "/Validate"
	visibilityMethod      = "/" + formValidationService + "/Visibility"
)

// RegisterFormValidationServer registers the service on a gRPC server.
func RegisterFormValidationServer(s grpc.ServiceRegistrar, srv FormValidationServer) {
	s.RegisterService(&FormValidation_ServiceDesc, srv)
}

// FormValidationClient is the client API of formkeeper.v1.FormValidation.
type FormValidationClient interface {
	Validate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Visibility(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type formValidationClient struct{ cc grpc.ClientConnInterface }

func NewFormValidationClient(cc grpc.ClientConnInterface) FormValidationClient {
	return &formValidationClient{cc: cc}
}

func (c *formValidationClient) Validate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, validateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *formValidationClient) Visibility(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, visibilityMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func _FormValidation_Validate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FormValidationServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: validateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FormValidationServer).Validate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _FormValidation_Visibility_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FormValidationServer).Visibility(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: visibilityMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FormValidationServer).Visibility(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// FormValidation_ServiceDesc is the grpc.ServiceDesc for the FormValidation service.
var FormValidation_ServiceDesc = grpc.ServiceDesc{
	ServiceName: formValidationService,
	HandlerType: (*FormValidationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Validate", Handler: _FormValidation_Validate_Handler},
		{MethodName: "Visibility", Handler: _FormValidation_Visibility_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "formkeeper/v1/validation.proto",
}
