package grpc

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/estateflow-backend/internal/adapter/presenter"
	"github.com/simaogato/estateflow-backend/internal/domain"
	"github.com/simaogato/estateflow-backend/internal/usecase/pricing"
	"github.com/simaogato/estateflow-backend/internal/usecase/timeline"
)

// Server implements the SalesConfigService gRPC server
type Server struct {
	PricingService  *pricing.PricingService
	ScheduleService *timeline.ScheduleService
}

var _ SalesConfigServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(pricingService *pricing.PricingService, scheduleService *timeline.ScheduleService) *Server {
	return &Server{
		PricingService:  pricingService,
		ScheduleService: scheduleService,
	}
}

// GetPriceView handles the GetPriceView RPC
// Request: {"product_id": "<uuid>"}
func (s *Server) GetPriceView(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := uuidField(req, "product_id")
	if err != nil {
		return nil, err
	}

	view, err := s.PricingService.GetPriceView(ctx, productID)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(presenter.PriceView(view))
}

// SelectDiscounts handles the SelectDiscounts RPC
// Request: {"product_id": "<uuid>", "discount_ids": ["<uuid>", ...]}
func (s *Server) SelectDiscounts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := uuidField(req, "product_id")
	if err != nil {
		return nil, err
	}

	var discountIDs []uuid.UUID
	if value, ok := req.GetFields()["discount_ids"]; ok {
		list := value.GetListValue()
		if list == nil {
			return nil, status.Error(codes.InvalidArgument, "discount_ids must be a list")
		}
		for _, item := range list.GetValues() {
			id, err := uuid.Parse(item.GetStringValue())
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "invalid discount_ids entry %q: %v", item.GetStringValue(), err)
			}
			discountIDs = append(discountIDs, id)
		}
	}

	count, err := s.PricingService.SelectDiscounts(ctx, productID, discountIDs)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]interface{}{
		"success":        true,
		"selected_count": count,
	})
}

// ListDiscounts handles the ListDiscounts RPC
// Request: {"active_only": true}
func (s *Server) ListDiscounts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	activeOnly := req.GetFields()["active_only"].GetBoolValue()

	discounts, err := s.PricingService.ListDiscounts(ctx, activeOnly)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(map[string]interface{}{
		"discounts": presenter.Discounts(discounts),
	})
}

// GetSchedule handles the GetSchedule RPC
// Request: {"product_id": "<uuid>"}
func (s *Server) GetSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := uuidField(req, "product_id")
	if err != nil {
		return nil, err
	}

	schedule, err := s.ScheduleService.GetSchedule(ctx, productID)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(presenter.Schedule(schedule))
}

// RegenerateSchedule handles the RegenerateSchedule RPC
// Request: {"product_id": "<uuid>"}
func (s *Server) RegenerateSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, err := uuidField(req, "product_id")
	if err != nil {
		return nil, err
	}

	schedule, err := s.ScheduleService.Regenerate(ctx, productID)
	if err != nil {
		return nil, mapError(err)
	}

	return toStruct(presenter.Schedule(schedule))
}

// uuidField parses a required UUID string field of a request
func uuidField(req *structpb.Struct, name string) (uuid.UUID, error) {
	value, ok := req.GetFields()[name]
	if !ok || value.GetStringValue() == "" {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "%s is required", name)
	}

	id, err := uuid.Parse(value.GetStringValue())
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", name, err)
	}
	return id, nil
}

func toStruct(m map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
