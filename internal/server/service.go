package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
)

const ServiceName = common.ErrorDomain

// TrackerService is the server API of nanopore.tracker.v1.TrackerService.
type TrackerService interface {
	Ingest(context.Context, *IngestRequest) (*IngestResponse, error)
	IngestFile(context.Context, *IngestFileRequest) (*IngestResponse, error)
	IngestDirectory(context.Context, *IngestDirectoryRequest) (*IngestDirectoryResponse, error)
	GetSubmission(context.Context, *GetSubmissionRequest) (*GetSubmissionResponse, error)
	ListSubmissions(context.Context, *ListSubmissionsRequest) (*ListSubmissionsResponse, error)
	DeleteSubmission(context.Context, *DeleteSubmissionRequest) (*DeleteSubmissionResponse, error)
	TransitionSample(context.Context, *TransitionSampleRequest) (*TransitionSampleResponse, error)
	SampleHistory(context.Context, *SampleHistoryRequest) (*SampleHistoryResponse, error)
	ExportSubmission(context.Context, *ExportSubmissionRequest) (*ExportSubmissionResponse, error)
}

// TrackerServiceDesc is written by hand; there is no protoc step. Messages use the
// JSON codec registered in codec.go.
var TrackerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TrackerService)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ingest", TrackerService.Ingest),
		unary("IngestFile", TrackerService.IngestFile),
		unary("IngestDirectory", TrackerService.IngestDirectory),
		unary("GetSubmission", TrackerService.GetSubmission),
		unary("ListSubmissions", TrackerService.ListSubmissions),
		unary("DeleteSubmission", TrackerService.DeleteSubmission),
		unary("TransitionSample", TrackerService.TransitionSample),
		unary("SampleHistory", TrackerService.SampleHistory),
		unary("ExportSubmission", TrackerService.ExportSubmission),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nanopore/tracker/v1/tracker.json",
}

func unary[Req, Resp any](name string, call func(TrackerService, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TrackerService), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TrackerService), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// RegisterTrackerService attaches impl to s.
func RegisterTrackerService(s grpc.ServiceRegistrar, impl TrackerService) {
	s.RegisterService(&TrackerServiceDesc, impl)
}

// TrackerServer implements TrackerService on top of the ingestion, workflow and
// export services.
type TrackerServer struct {
	ingest   Ingestor
	workflow Workflow
	export   Exporter
	logger   *slog.Logger
}

var _ TrackerService = (*TrackerServer)(nil)

func NewTrackerServer(ing Ingestor, wf Workflow, exp Exporter, logger *slog.Logger) *TrackerServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackerServer{ingest: ing, workflow: wf, export: exp, logger: logger}
}

// fail logs err and converts it to a gRPC status.
func (s *TrackerServer) fail(ctx context.Context, op string, err error, args ...any) error {
	args = append(args, "op", op, "error_kind", common.Kind(err), "error", err, "request_id", common.RequestIDFromContext(ctx))
	if common.Kind(err) == common.KindInternal {
		s.logger.Error("server.call.failed", args...)
	} else {
		s.logger.Warn("server.call.rejected", args...)
	}
	return common.ToStatus(err)
}

func parseID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, common.InvalidArgumentErrorf("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.InvalidArgumentErrorf("%s must be a UUID", field)
	}
	return id, nil
}
