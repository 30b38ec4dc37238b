package server

import (
	"context"

	"google.golang.org/grpc"
)

// Client calls TrackerService over an established connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ingest(ctx context.Context, in *IngestRequest, opts ...grpc.CallOption) (*IngestResponse, error) {
	return invoke[IngestResponse](ctx, c.cc, "Ingest", in, opts...)
}

func (c *Client) IngestFile(ctx context.Context, in *IngestFileRequest, opts ...grpc.CallOption) (*IngestResponse, error) {
	return invoke[IngestResponse](ctx, c.cc, "IngestFile", in, opts...)
}

func (c *Client) IngestDirectory(ctx context.Context, in *IngestDirectoryRequest, opts ...grpc.CallOption) (*IngestDirectoryResponse, error) {
	return invoke[IngestDirectoryResponse](ctx, c.cc, "IngestDirectory", in, opts...)
}

func (c *Client) GetSubmission(ctx context.Context, in *GetSubmissionRequest, opts ...grpc.CallOption) (*GetSubmissionResponse, error) {
	return invoke[GetSubmissionResponse](ctx, c.cc, "GetSubmission", in, opts...)
}

func (c *Client) ListSubmissions(ctx context.Context, in *ListSubmissionsRequest, opts ...grpc.CallOption) (*ListSubmissionsResponse, error) {
	return invoke[ListSubmissionsResponse](ctx, c.cc, "ListSubmissions", in, opts...)
}

func (c *Client) DeleteSubmission(ctx context.Context, in *DeleteSubmissionRequest, opts ...grpc.CallOption) (*DeleteSubmissionResponse, error) {
	return invoke[DeleteSubmissionResponse](ctx, c.cc, "DeleteSubmission", in, opts...)
}

func (c *Client) TransitionSample(ctx context.Context, in *TransitionSampleRequest, opts ...grpc.CallOption) (*TransitionSampleResponse, error) {
	return invoke[TransitionSampleResponse](ctx, c.cc, "TransitionSample", in, opts...)
}

func (c *Client) SampleHistory(ctx context.Context, in *SampleHistoryRequest, opts ...grpc.CallOption) (*SampleHistoryResponse, error) {
	return invoke[SampleHistoryResponse](ctx, c.cc, "SampleHistory", in, opts...)
}

func (c *Client) ExportSubmission(ctx context.Context, in *ExportSubmissionRequest, opts ...grpc.CallOption) (*ExportSubmissionResponse, error) {
	return invoke[ExportSubmissionResponse](ctx, c.cc, "ExportSubmission", in, opts...)
}
