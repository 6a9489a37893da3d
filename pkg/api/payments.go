package api

import (
	"context"
	"net/http"

	"github.com/casemark/casedev-go/pkg/client"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentStatusShape is the enum of payment lifecycle states.
var PaymentStatusShape = shape.MustEnum("PaymentStatus", PaymentPending, PaymentSucceeded, PaymentFailed, PaymentRefunded)

// PaymentCreateParamsShape takes the amount in minor units.
var PaymentCreateParamsShape = shape.MustModel("PaymentCreateParams",
	shape.Required("amount", shape.Int),
	shape.Required("currency", shape.String),
	shape.Optional("description", shape.String),
	shape.Optional("metadata", shape.MapOf(shape.String)),
)

// PaymentShape is a payment as returned by Create and Get.
var PaymentShape = shape.MustModel("Payment",
	shape.Required("id", shape.String),
	shape.Required("amount", shape.Int),
	shape.Required("currency", shape.String),
	shape.Required("status", PaymentStatusShape),
	shape.Optional("description", shape.String).AsNullable(),
	shape.Optional("metadata", shape.MapOf(shape.String)),
	shape.Required("createdAt", shape.DateTime).WithWire("created_at"),
)

var (
	paymentCreateEndpoint = client.Endpoint{
		Method: http.MethodPost,
		Path:   "/payments/v1/payments",
		Params: PaymentCreateParamsShape,
		Result: PaymentShape,
	}
	paymentGetEndpoint = client.Endpoint{
		Method: http.MethodGet,
		Path:   "/payments/v1/payments/{id}",
		Result: PaymentShape,
	}
)

func init() {
	register(map[string]shape.Shape{
		"PaymentStatus":       PaymentStatusShape,
		"PaymentCreateParams": PaymentCreateParamsShape,
		"Payment":             PaymentShape,
	})
}

// PaymentService creates and reads payments.
type PaymentService struct {
	client *client.Client
}

func (s *PaymentService) Create(ctx context.Context, params value.Object) (value.Object, error) {
	return call(ctx, s.client, paymentCreateEndpoint, params)
}

// Get fetches a payment by id.
func (s *PaymentService) Get(ctx context.Context, id string) (value.Object, error) {
	return call(ctx, s.client, paymentGetEndpoint, nil, id)
}
