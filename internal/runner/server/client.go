package server

import (
	"context"
	"fmt"
	"time"

	coreGrpc "github.com/msto63/calcscript/pkg/core/grpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Reply is the decoded answer of Runner.Run
type Reply struct {
	Success   bool
	Output    string
	SessionID string
	Code      string
	Message   string
	Line      int
}

// Client calls a remote Runner service
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// Dial connects to the Runner service at cfg.Target
func Dial(cfg coreGrpc.ClientConfig) (*Client, error) {
	conn, err := coreGrpc.Dial(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, timeout: cfg.Timeout}, nil
}

// Run executes code remotely
func (c *Client) Run(ctx context.Context, code string) (*Reply, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, RunMethod, wrapperspb.String(code), out); err != nil {
		return nil, fmt.Errorf("runner call failed: %w", err)
	}
	return decodeReply(out), nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func decodeReply(s *structpb.Struct) *Reply {
	f := s.GetFields()
	return &Reply{
		Success:   f["success"].GetBoolValue(),
		Output:    f["output"].GetStringValue(),
		SessionID: f["session_id"].GetStringValue(),
		Code:      f["code"].GetStringValue(),
		Message:   f["message"].GetStringValue(),
		Line:      int(f["line"].GetNumberValue()),
	}
}
