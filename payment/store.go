package payment

import (
	"context"

	"github.com/xraph/tally/id"
)

type Store interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, paymentID id.PaymentID) (*Payment, error)
	GetByVoucher(ctx context.Context, voucherNumber string) (*Payment, error)
	List(ctx context.Context, opts ListOpts) ([]*Payment, error)
	Delete(ctx context.Context, paymentID id.PaymentID) error
}

type VoucherStore interface {
	Create(ctx context.Context, v *Voucher) error
	Get(ctx context.Context, voucherNumber string) (*Voucher, error)
	List(ctx context.Context, opts VoucherListOpts) ([]*Voucher, error)
}

type ListOpts struct {
	EnrollmentID id.EnrollmentID
	StudentID    id.StudentID
	Type         Type
	Limit        int
	Offset       int
}

type VoucherListOpts struct {
	PaymentID id.PaymentID
	Limit     int
	Offset    int
}
