package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "recruitment.v1.RecruitmentService"

// FullMethod returns the invocation path of an RPC, e.g. for conn.Invoke.
func FullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary adapts a typed handler to a grpc.MethodDesc whose wire request and
// response are google.protobuf.Struct.
func unary[Req any](name string, fn func(s *Server, ctx context.Context, actor string, req *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return invoke(srv.(*Server), ctx, req.(*structpb.Struct), fn)
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// serviceDesc mirrors api/recruitment/v1/recruitment.proto.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary("TransitionStage", (*Server).transitionStage),
		unary("TransitionStatus", (*Server).transitionStatus),
		unary("ScheduleInterview", (*Server).scheduleInterview),
		unary("UpdateInterview", (*Server).updateInterview),
		unary("CancelInterview", (*Server).cancelInterview),
		unary("CompleteInterview", (*Server).completeInterview),
		unary("SubmitAssessment", (*Server).submitAssessment),
		unary("ListAssessments", (*Server).listAssessments),
		unary("CreateOffer", (*Server).createOffer),
		unary("MissingApproverRoles", (*Server).missingApproverRoles),
		unary("RecordOfferDecision", (*Server).recordOfferDecision),
		unary("AcceptOffer", (*Server).acceptOffer),
		unary("RejectOffer", (*Server).rejectOffer),
		unary("UpdateOnboardingTask", (*Server).updateOnboardingTask),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "recruitment/v1/recruitment.proto",
}
