package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/viralforge/event-portal/internal/application"
	"github.com/viralforge/event-portal/internal/domain"
)

// SessionInternalService is the service-to-service surface: sibling services
// validate portal tokens and resolve routing decisions without going
// through the public HTTP API.
type SessionInternalService interface {
	ValidateToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolveRoute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPublicKeys(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type SessionInternalServer struct {
	service *application.Service
}

func NewSessionInternalServer(service *application.Service) *SessionInternalServer {
	return &SessionInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc SessionInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "viralforge.portal.v1.SessionInternalService",
		HandlerType: (*SessionInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ValidateToken",
				Handler:    validateTokenHandler(svc),
			},
			{
				MethodName: "ResolveRoute",
				Handler:    resolveRouteHandler(svc),
			},
			{
				MethodName: "GetPublicKeys",
				Handler:    getPublicKeysHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "portal/contracts/proto/portal/v1/session_internal.proto",
	}, svc)
}

func tokenFromRequest(req *structpb.Struct) (string, error) {
	tokenVal := req.GetFields()["token"]
	if tokenVal == nil {
		return "", status.Error(codes.InvalidArgument, "missing token")
	}
	token := tokenVal.GetStringValue()
	if token == "" {
		return "", status.Error(codes.InvalidArgument, "missing token")
	}
	return token, nil
}

func (s *SessionInternalServer) ValidateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, err := tokenFromRequest(req)
	if err != nil {
		return nil, err
	}

	claims, err := s.service.ValidateToken(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	resp, err := structpb.NewStruct(map[string]any{
		"valid":      true,
		"user_id":    claims.UserID.String(),
		"email":      claims.Email,
		"session_id": claims.SessionID.String(),
		"expires_at": claims.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

// ResolveRoute returns the routing decision for a token, scoped to the
// event_id in the request when present, otherwise to the session's stored
// event selection.
func (s *SessionInternalServer) ResolveRoute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, err := tokenFromRequest(req)
	if err != nil {
		return nil, err
	}

	eventID := uuid.Nil
	if raw := req.GetFields()["event_id"].GetStringValue(); raw != "" {
		eventID, err = uuid.Parse(raw)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "event_id must be a valid UUID")
		}
	}

	view, err := s.service.RouteForEvent(ctx, token, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrIntegrityFault) {
			return nil, status.Error(codes.FailedPrecondition, "no roles held for the selected event")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	roles := make([]any, 0, len(view.Roles))
	for _, role := range view.Roles {
		roles = append(roles, role)
	}
	fields := map[string]any{
		"user_id":   view.User.UserID.String(),
		"email":     view.User.Email,
		"confirmed": view.User.Confirmed,
		"route":     string(view.Route),
		"roles":     roles,
	}
	if view.ActiveEventID != nil {
		fields["active_event_id"] = view.ActiveEventID.String()
	}
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *SessionInternalServer) GetPublicKeys(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	keys, err := s.service.PublicJWKs()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get keys: %v", err)
	}
	anyKeys := make([]any, 0, len(keys))
	for _, key := range keys {
		anyKeys = append(anyKeys, key)
	}
	resp, err := structpb.NewStruct(map[string]any{
		"keys": anyKeys,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func validateTokenHandler(svc SessionInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.ValidateToken(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/viralforge.portal.v1.SessionInternalService/ValidateToken",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.ValidateToken(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func resolveRouteHandler(svc SessionInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.ResolveRoute(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/viralforge.portal.v1.SessionInternalService/ResolveRoute",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.ResolveRoute(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func getPublicKeysHandler(svc SessionInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &emptypb.Empty{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.GetPublicKeys(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/viralforge.portal.v1.SessionInternalService/GetPublicKeys",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*emptypb.Empty)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.GetPublicKeys(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
