// Package grpcserver exposes the recruitment workflow over gRPC.
//
// It handles only transport concerns: actor extraction from metadata,
// Struct decoding and encoding, and error mapping. Every rule lives in
// package workflow.
package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/application"
	"hrdesk/recruitment-service/internal/domain/interview"
	"hrdesk/recruitment-service/internal/workflow"
)

// Engines bundles the workflow components the server delegates to.
type Engines struct {
	Stages     *workflow.StageEngine
	Status     *workflow.StatusEngine
	Interviews *workflow.InterviewScheduler
	Offers     *workflow.OfferWorkflow
	Onboarding *workflow.OnboardingGenerator
}

// Server implements RecruitmentService.
type Server struct {
	eng Engines
	log *slog.Logger
}

// NewServer constructs a Server backed by the given engines.
func NewServer(eng Engines, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{eng: eng, log: log}
}

// Register adds the service to gs.
func Register(gs grpc.ServiceRegistrar, s *Server) {
	gs.RegisterService(&serviceDesc, s)
}

// invoke authenticates the caller, decodes the typed request and encodes
// the handler's result.
func invoke[Req any](s *Server, ctx context.Context, in *structpb.Struct, fn func(*Server, context.Context, string, *Req) (any, error)) (*structpb.Struct, error) {
	actor, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	req := new(Req)
	if err := decode(in, req); err != nil {
		return nil, s.toGRPCError(err)
	}
	out, err := fn(s, ctx, actor, req)
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	resp, err := toStruct(out)
	if err != nil {
		s.log.Error("encode response failed", "err", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return resp, nil
}

// ─── Applications ────────────────────────────────────────────────────────────

func (s *Server) transitionStage(ctx context.Context, actor string, req *TransitionStageRequest) (any, error) {
	return s.eng.Stages.Transition(ctx, workflow.StageChange{
		ApplicationID: req.ApplicationID,
		NewStage:      req.Stage,
		Notes:         req.Notes,
		ChangedBy:     actor,
	})
}

func (s *Server) transitionStatus(ctx context.Context, actor string, req *TransitionStatusRequest) (any, error) {
	return s.eng.Status.Transition(ctx, workflow.StatusChange{
		ApplicationID:   req.ApplicationID,
		NewStatus:       req.Status,
		RejectionReason: req.RejectionReason,
		Notes:           req.Notes,
		ChangedBy:       actor,
	})
}

// ─── Interviews ──────────────────────────────────────────────────────────────

func (s *Server) scheduleInterview(ctx context.Context, _ string, req *ScheduleInterviewRequest) (any, error) {
	return s.eng.Interviews.Schedule(ctx, workflow.ScheduleRequest{
		ApplicationID: req.ApplicationID,
		Stage:         req.Stage,
		ScheduledDate: req.ScheduledDate,
		Method:        req.Method,
		Panel:         req.Panel,
		VideoLink:     req.VideoLink,
	})
}

func (s *Server) updateInterview(ctx context.Context, _ string, req *UpdateInterviewRequest) (any, error) {
	var patch interview.Patch
	if req.Stage != nil {
		st := application.Stage(*req.Stage)
		patch.Stage = &st
	}
	patch.ScheduledDate = req.ScheduledDate
	if req.Method != nil {
		m := interview.Method(*req.Method)
		patch.Method = &m
	}
	if req.Panel != nil {
		patch.Panel = *req.Panel
		if patch.Panel == nil {
			patch.Panel = []string{}
		}
	}
	patch.VideoLink = req.VideoLink
	return s.eng.Interviews.Update(ctx, req.InterviewID, patch)
}

func (s *Server) cancelInterview(ctx context.Context, _ string, req *InterviewRef) (any, error) {
	return s.eng.Interviews.Cancel(ctx, req.InterviewID)
}

func (s *Server) completeInterview(ctx context.Context, _ string, req *InterviewRef) (any, error) {
	return s.eng.Interviews.Complete(ctx, req.InterviewID)
}

// submitAssessment records the caller's own evaluation.
func (s *Server) submitAssessment(ctx context.Context, actor string, req *SubmitAssessmentRequest) (any, error) {
	return s.eng.Interviews.SubmitAssessment(ctx, workflow.AssessmentInput{
		InterviewID:   req.InterviewID,
		InterviewerID: actor,
		Score:         req.Score,
		Comments:      req.Comments,
	})
}

func (s *Server) listAssessments(ctx context.Context, _ string, req *InterviewRef) (any, error) {
	list, err := s.eng.Interviews.Assessments(ctx, req.InterviewID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []interview.Assessment{}
	}
	return ListAssessmentsResponse{Assessments: list}, nil
}

// ─── Offers ──────────────────────────────────────────────────────────────────

func approverInputs(in []Approver) []workflow.ApproverInput {
	out := make([]workflow.ApproverInput, len(in))
	for i, a := range in {
		out[i] = workflow.ApproverInput{EmployeeID: a.EmployeeID, Role: a.Role}
	}
	return out
}

func (s *Server) createOffer(ctx context.Context, actor string, req *CreateOfferRequest) (any, error) {
	return s.eng.Offers.Create(ctx, workflow.CreateOfferInput{
		ApplicationID: req.ApplicationID,
		Position:      req.Position,
		GrossSalary:   req.GrossSalary,
		Bonus:         req.Bonus,
		Benefits:      req.Benefits,
		Approvers:     approverInputs(req.Approvers),
		Deadline:      req.Deadline,
		CreatedBy:     actor,
	})
}

func (s *Server) missingApproverRoles(_ context.Context, _ string, req *MissingApproverRolesRequest) (any, error) {
	missing := s.eng.Offers.MissingRoles(approverInputs(req.Approvers), req.GrossSalary)
	roles := make([]string, len(missing))
	for i, r := range missing {
		roles[i] = string(r)
	}
	return MissingApproverRolesResponse{Missing: roles}, nil
}

// recordOfferDecision records the caller's verdict as an approver.
func (s *Server) recordOfferDecision(ctx context.Context, actor string, req *OfferDecisionRequest) (any, error) {
	return s.eng.Offers.RecordDecision(ctx, req.OfferID, actor, req.Decision, req.Comment)
}

func (s *Server) acceptOffer(ctx context.Context, actor string, req *OfferRef) (any, error) {
	return s.eng.Offers.Accept(ctx, req.OfferID, actor)
}

func (s *Server) rejectOffer(ctx context.Context, actor string, req *RejectOfferRequest) (any, error) {
	return s.eng.Offers.Reject(ctx, req.OfferID, actor, req.Reason)
}

// ─── Onboarding ──────────────────────────────────────────────────────────────

func (s *Server) updateOnboardingTask(ctx context.Context, _ string, req *UpdateOnboardingTaskRequest) (any, error) {
	return s.eng.Onboarding.UpdateTaskStatus(ctx, req.OnboardingID, req.TaskID, req.Status, req.Notes)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx extracts the x-user-id value forwarded by the gateway via
// gRPC metadata.
func userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || vals[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	return vals[0], nil
}

// toGRPCError maps domain errors to gRPC status errors. Unknown errors are
// logged and hidden behind a generic message.
func (s *Server) toGRPCError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch common.CodeOf(err) {
	case common.CodeNotFound:
		return status.Error(codes.NotFound, err.Error())
	case common.CodeValidation:
		return status.Error(codes.InvalidArgument, validationMessage(err))
	case common.CodeForbidden:
		return status.Error(codes.PermissionDenied, err.Error())
	case common.CodeConflict:
		return status.Error(codes.AlreadyExists, err.Error())
	}
	s.log.Error("request failed", "err", err)
	return status.Error(codes.Internal, "internal server error")
}

// validationMessage appends per-field messages in key order.
func validationMessage(err error) string {
	var ce *common.Error
	if !errors.As(err, &ce) || len(ce.Fields) == 0 {
		return err.Error()
	}
	keys := make([]string, 0, len(ce.Fields))
	for k := range ce.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, ce.Fields[k])
	}
	return ce.Message + " (" + strings.Join(parts, "; ") + ")"
}
