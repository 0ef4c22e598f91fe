package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/client/models"
	"github.com/dmitrijs2005/gophdiary/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const defaultCallTimeout = 15 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      DiaryServiceClient
	callTimeout time.Duration

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.AccessToken(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewDiaryClient dials endpointURL. The connection is established lazily
// on the first call.
func NewDiaryClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, callTimeout: defaultCallTimeout}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = NewDiaryServiceClient(conn)
	return nil
}

// AccessToken returns the token attached to outgoing calls.
func (s *GRPCClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken replaces the token attached to outgoing calls.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return common.ErrUnavailable
	}

	return nil
}

// ListRecords fetches the account's full record list. Items that cannot be
// decoded are returned with Malformed set so the caller can skip them.
func (s *GRPCClient) ListRecords(ctx context.Context) ([]RemoteItem, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ListRecords(ctx, &ListRecordsRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}

	return DecodeItems(resp.Items), nil
}

// DecodeItems decodes each raw item on its own.
func DecodeItems(raw []json.RawMessage) []RemoteItem {
	items := make([]RemoteItem, 0, len(raw))
	for _, r := range raw {
		var it RemoteItem
		if err := json.Unmarshal(r, &it); err != nil {
			items = append(items, RemoteItem{Malformed: true})
			continue
		}
		items = append(items, it)
	}
	return items
}

func (s *GRPCClient) CreateRecord(ctx context.Context, rec models.DiaryRecord) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.CreateRecord(ctx, &CreateRecordRequest{Record: PayloadFrom(rec)})
	if err != nil {
		return "", s.mapError(err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: create returned no id", common.ErrMalformedPayload)
	}
	return resp.ID, nil
}

func (s *GRPCClient) UpdateRecord(ctx context.Context, remoteID string, rec models.DiaryRecord) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.UpdateRecord(ctx, &UpdateRecordRequest{ID: remoteID, Record: PayloadFrom(rec)})
	return s.mapError(err)
}

func (s *GRPCClient) EnrichRecord(ctx context.Context, remoteID string, derived models.Derived) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.EnrichRecord(ctx, &EnrichRecordRequest{ID: remoteID, Derived: derived.Settled()})
	return s.mapError(err)
}

func (s *GRPCClient) FindRecordByDate(ctx context.Context, date models.Date) (string, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.FindRecordByDate(ctx, &FindRecordByDateRequest{EntryDate: date.String()})
	if err != nil {
		return "", false, s.mapError(err)
	}
	if !resp.Found || resp.ID == "" {
		return "", false, nil
	}
	return resp.ID, true, nil
}

func (s *GRPCClient) DeleteRecord(ctx context.Context, remoteID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DeleteRecord(ctx, &DeleteRecordRequest{ID: remoteID})
	return s.mapError(err)
}

// Analyze has no call timeout of its own; the caller bounds it.
func (s *GRPCClient) Analyze(ctx context.Context, date models.Date, text string) (Analysis, error) {
	resp, err := s.client.Analyze(ctx, &AnalyzeRequest{EntryDate: date.String(), Text: text})
	if err != nil {
		return Analysis{}, s.mapError(err)
	}
	return resp.Analysis, nil
}

func (s *GRPCClient) IssuePairingCode(ctx context.Context) (models.PairingCode, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.IssuePairingCode(ctx, &IssuePairingCodeRequest{})
	if err != nil {
		return models.PairingCode{}, s.mapError(err)
	}
	return resp.Code, nil
}

func (s *GRPCClient) ConsumePairingCode(ctx context.Context, code string) (models.Relationship, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ConsumePairingCode(ctx, &ConsumePairingCodeRequest{Code: code})
	if err != nil {
		return models.Relationship{}, s.mapError(err)
	}
	return resp.Relationship, nil
}

func (s *GRPCClient) ListRelationships(ctx context.Context, role models.Role) ([]models.Relationship, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ListRelationships(ctx, &ListRelationshipsRequest{Role: role})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]models.Relationship, 0, len(resp.Relationships))
	for _, r := range resp.Relationships {
		r.Role = role
		out = append(out, r)
	}
	return out, nil
}

func (s *GRPCClient) Disconnect(ctx context.Context, targetID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.Disconnect(ctx, &DisconnectRequest{TargetID: targetID})
	return s.mapError(err)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, st.Message())
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return fmt.Errorf("%w: %s", common.ErrUnavailable, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrMalformedPayload, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
