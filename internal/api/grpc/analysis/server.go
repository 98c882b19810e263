package analysis

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/ulmotion/internal/domain/motion"
	"github.com/oshokin/ulmotion/internal/logger"
	"github.com/oshokin/ulmotion/internal/movement"
	"github.com/oshokin/ulmotion/internal/uluse"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	ExtractSegments(ctx context.Context, recording *motion.Recording, p movement.Params) ([]motion.Segment, error)
	ClassifyUse(ctx context.Context, recording *motion.Recording, p uluse.GMACParams) (*uluse.GMACResult, error)
	ClassifyCounts(ctx context.Context, recording *motion.Recording, forearmAxis int, p uluse.CountParams) ([]float64, error)
	ClassifyActivity(ctx context.Context, recording *motion.Recording, column int, low, high float64) ([]float64, error)
}

// Server implements the AnalysisService gRPC API.
type Server struct {
	// service provides the analysis operations.
	service Service
}

var _ AnalysisServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// ExtractSegments returns the movement bouts of the request recording.
func (s *Server) ExtractSegments(ctx context.Context, req *SegmentsRequest) (*SegmentsResponse, error) {
	if req == nil || req.Recording == nil {
		return nil, status.Error(codes.InvalidArgument, "recording is required")
	}

	segments, err := s.service.ExtractSegments(ctx, req.Recording, req.Params)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &SegmentsResponse{Segments: segments}, nil
}

// ClassifyUse returns the GMAC outputs for the request recording.
func (s *Server) ClassifyUse(ctx context.Context, req *UseRequest) (*UseResponse, error) {
	if req == nil || req.Recording == nil {
		return nil, status.Error(codes.InvalidArgument, "recording is required")
	}

	result, err := s.service.ClassifyUse(ctx, req.Recording, req.Params)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &UseResponse{Result: result}, nil
}

// ClassifyCounts returns the count-based use decisions for the request recording.
func (s *Server) ClassifyCounts(ctx context.Context, req *CountsRequest) (*DecisionResponse, error) {
	if req == nil || req.Recording == nil {
		return nil, status.Error(codes.InvalidArgument, "recording is required")
	}

	use, err := s.service.ClassifyCounts(ctx, req.Recording, req.ForearmAxis, req.Params)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &DecisionResponse{Use: use}, nil
}

// ClassifyActivity returns the activity count use decisions for the request recording.
func (s *Server) ClassifyActivity(ctx context.Context, req *ActivityRequest) (*DecisionResponse, error) {
	if req == nil || req.Recording == nil {
		return nil, status.Error(codes.InvalidArgument, "recording is required")
	}

	use, err := s.service.ClassifyActivity(ctx, req.Recording, req.Column, req.Low, req.High)
	if err != nil {
		return nil, toStatus(ctx, err)
	}

	return &DecisionResponse{Use: use}, nil
}

// toStatus maps service errors to gRPC status errors. Invalid arguments keep
// their message, other failures are logged and reported as internal.
func toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, motion.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		logger.ErrorKV(ctx, "Analysis failed", "error", err)

		return status.Error(codes.Internal, "analysis failed")
	}
}

// FromStatus turns an InvalidArgument status back into an error wrapping
// motion.ErrInvalidArgument. Other errors are returned unchanged.
func FromStatus(err error) error {
	if st, ok := status.FromError(err); ok && st.Code() == codes.InvalidArgument {
		return motion.InvalidArgument("%s", st.Message())
	}

	return err
}
