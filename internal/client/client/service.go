package client

import (
	"context"

	"google.golang.org/grpc"
)

// DiaryServiceName is the fully qualified gRPC service name.
const DiaryServiceName = "diary.v1.DiaryService"

// Full method names of diary.v1.DiaryService.
const (
	MethodPing               = "/" + DiaryServiceName + "/Ping"
	MethodListRecords        = "/" + DiaryServiceName + "/ListRecords"
	MethodCreateRecord       = "/" + DiaryServiceName + "/CreateRecord"
	MethodUpdateRecord       = "/" + DiaryServiceName + "/UpdateRecord"
	MethodEnrichRecord       = "/" + DiaryServiceName + "/EnrichRecord"
	MethodFindRecordByDate   = "/" + DiaryServiceName + "/FindRecordByDate"
	MethodDeleteRecord       = "/" + DiaryServiceName + "/DeleteRecord"
	MethodAnalyze            = "/" + DiaryServiceName + "/Analyze"
	MethodIssuePairingCode   = "/" + DiaryServiceName + "/IssuePairingCode"
	MethodConsumePairingCode = "/" + DiaryServiceName + "/ConsumePairingCode"
	MethodListRelationships  = "/" + DiaryServiceName + "/ListRelationships"
	MethodDisconnect         = "/" + DiaryServiceName + "/Disconnect"
)

// DiaryServiceClient is the stub interface of diary.v1.DiaryService.
type DiaryServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	ListRecords(ctx context.Context, in *ListRecordsRequest, opts ...grpc.CallOption) (*ListRecordsResponse, error)
	CreateRecord(ctx context.Context, in *CreateRecordRequest, opts ...grpc.CallOption) (*CreateRecordResponse, error)
	UpdateRecord(ctx context.Context, in *UpdateRecordRequest, opts ...grpc.CallOption) (*UpdateRecordResponse, error)
	EnrichRecord(ctx context.Context, in *EnrichRecordRequest, opts ...grpc.CallOption) (*EnrichRecordResponse, error)
	FindRecordByDate(ctx context.Context, in *FindRecordByDateRequest, opts ...grpc.CallOption) (*FindRecordByDateResponse, error)
	DeleteRecord(ctx context.Context, in *DeleteRecordRequest, opts ...grpc.CallOption) (*DeleteRecordResponse, error)
	Analyze(ctx context.Context, in *AnalyzeRequest, opts ...grpc.CallOption) (*AnalyzeResponse, error)
	IssuePairingCode(ctx context.Context, in *IssuePairingCodeRequest, opts ...grpc.CallOption) (*IssuePairingCodeResponse, error)
	ConsumePairingCode(ctx context.Context, in *ConsumePairingCodeRequest, opts ...grpc.CallOption) (*ConsumePairingCodeResponse, error)
	ListRelationships(ctx context.Context, in *ListRelationshipsRequest, opts ...grpc.CallOption) (*ListRelationshipsResponse, error)
	Disconnect(ctx context.Context, in *DisconnectRequest, opts ...grpc.CallOption) (*DisconnectResponse, error)
}

type diaryServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDiaryServiceClient returns a stub bound to cc.
func NewDiaryServiceClient(cc grpc.ClientConnInterface) DiaryServiceClient {
	return &diaryServiceClient{cc: cc}
}

func (c *diaryServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.cc.Invoke(ctx, MethodPing, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) ListRecords(ctx context.Context, in *ListRecordsRequest, opts ...grpc.CallOption) (*ListRecordsResponse, error) {
	out := new(ListRecordsResponse)
	if err := c.cc.Invoke(ctx, MethodListRecords, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) CreateRecord(ctx context.Context, in *CreateRecordRequest, opts ...grpc.CallOption) (*CreateRecordResponse, error) {
	out := new(CreateRecordResponse)
	if err := c.cc.Invoke(ctx, MethodCreateRecord, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) UpdateRecord(ctx context.Context, in *UpdateRecordRequest, opts ...grpc.CallOption) (*UpdateRecordResponse, error) {
	out := new(UpdateRecordResponse)
	if err := c.cc.Invoke(ctx, MethodUpdateRecord, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) EnrichRecord(ctx context.Context, in *EnrichRecordRequest, opts ...grpc.CallOption) (*EnrichRecordResponse, error) {
	out := new(EnrichRecordResponse)
	if err := c.cc.Invoke(ctx, MethodEnrichRecord, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) FindRecordByDate(ctx context.Context, in *FindRecordByDateRequest, opts ...grpc.CallOption) (*FindRecordByDateResponse, error) {
	out := new(FindRecordByDateResponse)
	if err := c.cc.Invoke(ctx, MethodFindRecordByDate, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) DeleteRecord(ctx context.Context, in *DeleteRecordRequest, opts ...grpc.CallOption) (*DeleteRecordResponse, error) {
	out := new(DeleteRecordResponse)
	if err := c.cc.Invoke(ctx, MethodDeleteRecord, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) Analyze(ctx context.Context, in *AnalyzeRequest, opts ...grpc.CallOption) (*AnalyzeResponse, error) {
	out := new(AnalyzeResponse)
	if err := c.cc.Invoke(ctx, MethodAnalyze, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) IssuePairingCode(ctx context.Context, in *IssuePairingCodeRequest, opts ...grpc.CallOption) (*IssuePairingCodeResponse, error) {
	out := new(IssuePairingCodeResponse)
	if err := c.cc.Invoke(ctx, MethodIssuePairingCode, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) ConsumePairingCode(ctx context.Context, in *ConsumePairingCodeRequest, opts ...grpc.CallOption) (*ConsumePairingCodeResponse, error) {
	out := new(ConsumePairingCodeResponse)
	if err := c.cc.Invoke(ctx, MethodConsumePairingCode, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) ListRelationships(ctx context.Context, in *ListRelationshipsRequest, opts ...grpc.CallOption) (*ListRelationshipsResponse, error) {
	out := new(ListRelationshipsResponse)
	if err := c.cc.Invoke(ctx, MethodListRelationships, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diaryServiceClient) Disconnect(ctx context.Context, in *DisconnectRequest, opts ...grpc.CallOption) (*DisconnectResponse, error) {
	out := new(DisconnectResponse)
	if err := c.cc.Invoke(ctx, MethodDisconnect, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
