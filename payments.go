package tally

import (
	"context"
	"fmt"

	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/payment"
)

// recordedPayment collects what recordPayment wrote so it can be announced
// once the lock is released.
type recordedPayment struct {
	payment    *payment.Payment
	enrollment *enrollment.Enrollment
	voucher    *payment.Voucher
}

// RecordCoursePayment books a payment against an enrollment. An
// enrollment-type payment moves money from remaining to paid; admission,
// registration and exam payments only mark the matching fee paid. An empty
// voucher number is generated; a used one is refused with
// ErrDuplicateVoucherNumber.
func (t *Tally) RecordCoursePayment(ctx context.Context, p *payment.Payment) error {
	var rec *recordedPayment
	err := t.atomically(ctx, func() error {
		var err error
		rec, err = t.recordPayment(ctx, p, false)
		return err
	})
	if err != nil {
		return err
	}

	t.announcePayment(ctx, rec)
	return nil
}

// recordPayment applies p to its enrollment and stores it. The caller holds
// the lock.
func (t *Tally) recordPayment(ctx context.Context, p *payment.Payment, withVoucher bool) (*recordedPayment, error) {
	if err := t.preparePayment(ctx, p); err != nil {
		return nil, err
	}
	if p.EnrollmentID.IsNil() {
		return nil, ErrEnrollmentNotFound
	}
	e, err := t.store.GetEnrollment(ctx, p.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if err := t.checkPayment(e, p); err != nil {
		return nil, err
	}
	return t.applyPayment(ctx, e, p, withVoucher)
}

// preparePayment fills in defaults, validates p and reserves its voucher
// number. It writes nothing.
func (t *Tally) preparePayment(ctx context.Context, p *payment.Payment) error {
	t.stamp(&p.ID, id.NewPaymentID, &p.Entity)
	p.FeeAlreadyPaid = false
	if p.PaymentDate.IsZero() {
		p.PaymentDate = t.now()
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = payment.MethodCash
	}
	if err := t.check(p); err != nil {
		return err
	}

	if p.VoucherNumber == "" {
		number, err := t.voucherNumber(ctx)
		if err != nil {
			return err
		}
		p.VoucherNumber = number
		return nil
	}
	taken, err := t.voucherNumberTaken(ctx, p.VoucherNumber)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrDuplicateVoucherNumber, p.VoucherNumber)
	}
	return nil
}

// checkPayment applies the payment policy to p against e.
func (t *Tally) checkPayment(e *enrollment.Enrollment, p *payment.Payment) error {
	if p.PaymentType == payment.TypeEnrollment &&
		t.paymentPolicy == PaymentReject && p.Amount.GreaterThan(e.RemainingAmount) {
		return fmt.Errorf("%w: %s paid, %s remaining", ErrOverpayment, p.Amount, e.RemainingAmount)
	}
	return nil
}

// applyPayment moves p's money or fee flag onto e and stores both. p must
// have passed preparePayment and checkPayment.
func (t *Tally) applyPayment(ctx context.Context, e *enrollment.Enrollment, p *payment.Payment, withVoucher bool) (*recordedPayment, error) {
	if p.StudentID.IsNil() {
		p.StudentID = e.StudentID
	}

	switch {
	case p.PaymentType == payment.TypeEnrollment:
		e.ApplyPayment(p.Amount)
	case p.PaymentType.IsFee():
		flag := feeFlag(e, p.PaymentType)
		if *flag {
			backed, err := t.feePayments(ctx, e.ID, p.PaymentType, p.ID)
			if err != nil {
				return nil, err
			}
			p.FeeAlreadyPaid = backed == 0
		}
		*flag = true
	}
	e.TouchAt(t.now())

	if err := t.store.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	if err := t.store.UpdateEnrollment(ctx, e); err != nil {
		return nil, err
	}

	rec := &recordedPayment{payment: p, enrollment: e}
	if withVoucher {
		v, fresh, err := t.voucherFor(ctx, p.VoucherNumber)
		if err != nil {
			return nil, err
		}
		if fresh {
			rec.voucher = v
		}
	}
	return rec, nil
}

func (t *Tally) announcePayment(ctx context.Context, rec *recordedPayment) {
	p := rec.payment
	t.logger.Info("course payment recorded",
		"payment_id", p.ID.String(),
		"enrollment_id", p.EnrollmentID.String(),
		"type", string(p.PaymentType),
		"amount", p.Amount.String(),
		"voucher_number", p.VoucherNumber,
	)
	t.plugins.EmitPaymentRecorded(ctx, p)
	if rec.voucher != nil {
		t.plugins.EmitVoucherGenerated(ctx, rec.voucher)
	}
}

// DeleteCoursePayment applies the exact inverse of the payment to its
// enrollment and removes it. A fee flag stays set while another payment of
// the same type for the enrollment remains, or when it was already set
// before the payment with nothing behind it. Deleting a missing payment is
// a no-op; issued vouchers are kept.
func (t *Tally) DeleteCoursePayment(ctx context.Context, paymentID id.PaymentID) error {
	var deleted *payment.Payment
	err := t.atomically(ctx, func() error {
		p, err := t.store.GetPayment(ctx, paymentID)
		if IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}

		e, err := t.store.GetEnrollment(ctx, p.EnrollmentID)
		switch {
		case IsNotFound(err):
			t.logger.Warn("payment references unknown enrollment",
				"payment_id", p.ID.String(),
				"enrollment_id", p.EnrollmentID.String(),
			)
		case err != nil:
			return err
		default:
			if err := t.reversePayment(ctx, e, p); err != nil {
				return err
			}
		}

		if err := t.store.DeletePayment(ctx, paymentID); err != nil {
			return err
		}
		deleted = p
		return nil
	})
	if err != nil || deleted == nil {
		return err
	}

	t.logger.Info("course payment deleted",
		"payment_id", deleted.ID.String(),
		"enrollment_id", deleted.EnrollmentID.String(),
		"amount", deleted.Amount.String(),
	)
	t.plugins.EmitPaymentDeleted(ctx, deleted)
	return nil
}

func (t *Tally) reversePayment(ctx context.Context, e *enrollment.Enrollment, p *payment.Payment) error {
	switch {
	case p.PaymentType == payment.TypeEnrollment:
		e.ReversePayment(p.Amount)
	case p.PaymentType.IsFee():
		others, err := t.feePayments(ctx, e.ID, p.PaymentType, p.ID)
		if err != nil {
			return err
		}
		*feeFlag(e, p.PaymentType) = others > 0 || p.FeeAlreadyPaid
	}
	e.TouchAt(t.now())
	return t.store.UpdateEnrollment(ctx, e)
}

// feePayments counts the enrollment's payments of type typ other than skip.
func (t *Tally) feePayments(ctx context.Context, enrollmentID id.EnrollmentID, typ payment.Type, skip id.PaymentID) (int, error) {
	ps, err := t.store.ListPayments(ctx, payment.ListOpts{
		EnrollmentID: enrollmentID,
		Type:         typ,
	})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, o := range ps {
		if o.ID != skip {
			n++
		}
	}
	return n, nil
}

// GetCoursePayment retrieves a payment by ID.
func (t *Tally) GetCoursePayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	return t.store.GetPayment(ctx, paymentID)
}

// ListCoursePayments lists payments in insertion order.
func (t *Tally) ListCoursePayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	return t.store.ListPayments(ctx, opts)
}

// ──────────────────────────────────────────────────
// Vouchers
// ──────────────────────────────────────────────────

// GeneratePaymentVoucher issues the receipt for the payment with the given
// voucher number. Names are copied from the student, course and batch;
// records that cannot be found are listed in Voucher.Missing. A voucher is
// issued once per number; later calls return the existing one.
func (t *Tally) GeneratePaymentVoucher(ctx context.Context, voucherNumber string) (*payment.Voucher, error) {
	var (
		v     *payment.Voucher
		fresh bool
	)
	err := t.atomically(ctx, func() error {
		var err error
		v, fresh, err = t.voucherFor(ctx, voucherNumber)
		return err
	})
	if err != nil {
		return nil, err
	}

	if fresh {
		t.plugins.EmitVoucherGenerated(ctx, v)
	}
	return v, nil
}

// GetVoucher retrieves a voucher by its number.
func (t *Tally) GetVoucher(ctx context.Context, voucherNumber string) (*payment.Voucher, error) {
	return t.store.GetVoucher(ctx, voucherNumber)
}

// ListVouchers lists vouchers in issue order.
func (t *Tally) ListVouchers(ctx context.Context, opts payment.VoucherListOpts) ([]*payment.Voucher, error) {
	return t.store.ListVouchers(ctx, opts)
}

// voucherFor returns the voucher for number, creating it when none exists.
// fresh reports whether it was created. The caller holds the lock.
func (t *Tally) voucherFor(ctx context.Context, number string) (v *payment.Voucher, fresh bool, err error) {
	v, err = t.store.GetVoucher(ctx, number)
	if err == nil {
		return v, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}

	p, err := t.store.GetPaymentByVoucher(ctx, number)
	if err != nil {
		return nil, false, err
	}

	v = &payment.Voucher{
		VoucherNumber: p.VoucherNumber,
		PaymentID:     p.ID,
		PaymentType:   p.PaymentType,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		PaymentDate:   p.PaymentDate,
		ReceivedBy:    p.ReceivedBy,
	}
	t.stamp(&v.ID, id.NewVoucherID, &v.Entity)

	if s, err := t.store.GetStudent(ctx, p.StudentID); err == nil {
		v.StudentName = s.Name
	} else {
		v.Missing = append(v.Missing, "student")
	}

	e, err := t.store.GetEnrollment(ctx, p.EnrollmentID)
	if err != nil {
		v.Missing = append(v.Missing, "enrollment", "course", "batch")
	} else {
		if c, err := t.store.GetCourse(ctx, e.CourseID); err == nil {
			v.CourseName = c.Name
		} else {
			v.Missing = append(v.Missing, "course")
		}
		if b, err := t.store.GetBatch(ctx, e.BatchID); err == nil {
			v.BatchName = b.BatchName
		} else {
			v.Missing = append(v.Missing, "batch")
		}
		if p.PaymentType == payment.TypeEnrollment {
			info, err := t.installmentInfo(ctx, e, p)
			if err != nil {
				return nil, false, err
			}
			v.InstallmentInfo = info
		}
	}

	if err := t.store.CreateVoucher(ctx, v); err != nil {
		return nil, false, err
	}
	if len(v.Missing) > 0 {
		t.logger.Warn("voucher generated with missing records",
			"voucher_number", number,
			"missing", v.Missing,
		)
	}
	return v, true, nil
}

// installmentInfo describes p's position among the enrollment's fee
// payments, e.g. "Installment 2, 40.00 remaining".
func (t *Tally) installmentInfo(ctx context.Context, e *enrollment.Enrollment, p *payment.Payment) (string, error) {
	paid, err := t.store.ListPayments(ctx, payment.ListOpts{
		EnrollmentID: e.ID,
		Type:         payment.TypeEnrollment,
	})
	if err != nil {
		return "", err
	}
	n := len(paid)
	for i, o := range paid {
		if o.ID == p.ID {
			n = i + 1
			break
		}
	}
	return fmt.Sprintf("Installment %d, %s remaining", n, e.RemainingAmount), nil
}

// voucherNumber returns a PAY- number not yet used by any payment.
func (t *Tally) voucherNumber(ctx context.Context) (string, error) {
	for {
		number := t.number("PAY")
		taken, err := t.voucherNumberTaken(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
}

// voucherNumberTaken reports whether number belongs to a payment or to an
// issued voucher. Vouchers outlive their payments, so both are checked.
func (t *Tally) voucherNumberTaken(ctx context.Context, number string) (bool, error) {
	_, err := t.store.GetPaymentByVoucher(ctx, number)
	if err == nil {
		return true, nil
	}
	if !IsNotFound(err) {
		return false, err
	}
	_, err = t.store.GetVoucher(ctx, number)
	if err == nil {
		return true, nil
	}
	if !IsNotFound(err) {
		return false, err
	}
	return false, nil
}

// feeFlag returns the enrollment flag a fee payment type sets, or nil.
func feeFlag(e *enrollment.Enrollment, typ payment.Type) *bool {
	switch typ {
	case payment.TypeAdmission:
		return &e.AdmissionFeePaid
	case payment.TypeRegistration:
		return &e.RegistrationFeePaid
	case payment.TypeExam:
		return &e.ExamFeePaid
	default:
		return nil
	}
}
