//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"

	api "github.com/oshokin/ulmotion/internal/api/grpc/analysis"
	"github.com/oshokin/ulmotion/internal/config"
	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/movement"
	"github.com/oshokin/ulmotion/internal/uluse"
)

// Client wraps the gRPC AnalysisService client with convenience helpers.
// Its methods match the analysis service, so it can stand in for a local one.
type Client struct {
	// conn is the underlying gRPC connection to the analysis server.
	conn *grpc.ClientConn
	// api is the AnalysisService client stub.
	api *api.AnalysisClient
	// health is the standard gRPC health client on the same connection.
	health healthpb.HealthClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// caller identifies this client in server logs.
	caller string
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithCaller sets the identity sent along with every call.
func WithCaller(caller string) Option {
	return func(c *Client) {
		c.caller = caller
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the analysis server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial analysis server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewAnalysisClient(conn),
		health:      healthpb.NewHealthClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ExtractSegments extracts movement bouts remotely.
func (c *Client) ExtractSegments(
	ctx context.Context,
	recording *motion.Recording,
	p movement.Params,
) ([]motion.Segment, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ExtractSegments(callCtx, &api.SegmentsRequest{Recording: recording, Params: p})
	if err != nil {
		return nil, fmt.Errorf("extract segments: %w", api.FromStatus(err))
	}

	return resp.Segments, nil
}

// ClassifyUse runs GMAC remotely.
func (c *Client) ClassifyUse(
	ctx context.Context,
	recording *motion.Recording,
	p uluse.GMACParams,
) (*uluse.GMACResult, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ClassifyUse(callCtx, &api.UseRequest{Recording: recording, Params: p})
	if err != nil {
		return nil, fmt.Errorf("classify use: %w", api.FromStatus(err))
	}

	return resp.Result, nil
}

// ClassifyCounts runs the count-based GMAC remotely.
func (c *Client) ClassifyCounts(
	ctx context.Context,
	recording *motion.Recording,
	forearmAxis int,
	p uluse.CountParams,
) ([]float64, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &api.CountsRequest{
		Recording:   recording,
		ForearmAxis: forearmAxis,
		Params:      p,
	}

	resp, err := c.api.ClassifyCounts(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("classify counts: %w", api.FromStatus(err))
	}

	return resp.Use, nil
}

// ClassifyActivity classifies activity counts remotely.
func (c *Client) ClassifyActivity(
	ctx context.Context,
	recording *motion.Recording,
	column int,
	low, high float64,
) ([]float64, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &api.ActivityRequest{
		Recording: recording,
		Column:    column,
		Low:       low,
		High:      high,
	}

	resp, err := c.api.ClassifyActivity(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("classify activity: %w", api.FromStatus(err))
	}

	return resp.Use, nil
}

// Serving reports whether the server has the analysis service up.
func (c *Client) Serving(ctx context.Context) (bool, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.health.Check(callCtx, &healthpb.HealthCheckRequest{Service: api.ServiceName})
	if err != nil {
		return false, fmt.Errorf("check health: %w", err)
	}

	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline. The caller
// identity, when set, travels as outgoing metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.caller != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, api.CallerMetadataKey, c.caller)
	}

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
