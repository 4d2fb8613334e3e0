package tally_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tally"
	"github.com/xraph/tally/course"
	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/payment"
)

func enrollAll(t *testing.T, tl *tally.Tally, room classroom) *enrollment.Enrollment {
	t.Helper()
	e, err := tl.Enroll(context.Background(), enrollment.Request{
		StudentID: room.student.ID,
		CourseID:  room.course.ID,
		BatchID:   room.batch.ID,
		Fees:      course.FeeSelection{Admission: true, Registration: true, Exam: true},
	})
	require.NoError(t, err)
	return e
}

func TestPaymentRoundTrip(t *testing.T) {
	for _, typ := range []payment.Type{
		payment.TypeEnrollment,
		payment.TypeAdmission,
		payment.TypeRegistration,
		payment.TypeExam,
	} {
		t.Run(string(typ), func(t *testing.T) {
			ctx := context.Background()
			tl, _ := newTally(t)
			e := enrollAll(t, tl, mustClassroom(t, tl, 0))

			require.NoError(t, tl.RecordCoursePayment(ctx, &payment.Payment{
				EnrollmentID: e.ID,
				PaymentType:  payment.TypeEnrollment,
				Amount:       tally.Cents(3333),
			}))
			before, err := tl.GetEnrollment(ctx, e.ID)
			require.NoError(t, err)

			p := &payment.Payment{EnrollmentID: e.ID, PaymentType: typ, Amount: tally.Cents(1250)}
			require.NoError(t, tl.RecordCoursePayment(ctx, p))
			require.NoError(t, tl.DeleteCoursePayment(ctx, p.ID))

			after, err := tl.GetEnrollment(ctx, e.ID)
			require.NoError(t, err)
			assert.Equal(t, before.PaidAmount, after.PaidAmount)
			assert.Equal(t, before.RemainingAmount, after.RemainingAmount)
			assert.Equal(t, before.AdmissionFeePaid, after.AdmissionFeePaid)
			assert.Equal(t, before.RegistrationFeePaid, after.RegistrationFeePaid)
			assert.Equal(t, before.ExamFeePaid, after.ExamFeePaid)
			assert.True(t, after.Balanced())
		})
	}
}

func TestFeeFlagSurvivesWhileAnotherPaymentRemains(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)
	e := enrollAll(t, tl, mustClassroom(t, tl, 0))

	first := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeExam, Amount: tally.Major(3)}
	second := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeExam, Amount: tally.Major(2)}
	require.NoError(t, tl.RecordCoursePayment(ctx, first))
	require.NoError(t, tl.RecordCoursePayment(ctx, second))

	require.NoError(t, tl.DeleteCoursePayment(ctx, first.ID))
	got, err := tl.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.ExamFeePaid)

	require.NoError(t, tl.DeleteCoursePayment(ctx, second.ID))
	got, err = tl.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.ExamFeePaid)
}

func TestRemainingAlwaysBalanced(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)
	e := enrollAll(t, tl, mustClassroom(t, tl, 0))

	var ids []id.PaymentID
	for _, cents := range []int64{1000, 2575, 1, 9999, 4000} {
		p := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeEnrollment, Amount: tally.Cents(cents)}
		require.NoError(t, tl.RecordCoursePayment(ctx, p))
		ids = append(ids, p.ID)

		got, err := tl.GetEnrollment(ctx, e.ID)
		require.NoError(t, err)
		require.True(t, got.Balanced())
	}

	got, err := tl.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.RemainingAmount.IsNegative(), "overpayment is accepted by default")

	for _, pid := range ids {
		require.NoError(t, tl.DeleteCoursePayment(ctx, pid))
		got, err := tl.GetEnrollment(ctx, e.ID)
		require.NoError(t, err)
		require.True(t, got.Balanced())
	}
	got, err = tl.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, tally.Zero, got.PaidAmount)
	assert.Equal(t, got.TotalFee, got.RemainingAmount)
}

func TestPaymentRejectPolicy(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t, tally.WithPaymentPolicy(tally.PaymentReject))
	e := enrollAll(t, tl, mustClassroom(t, tl, 0))

	err := tl.RecordCoursePayment(ctx, &payment.Payment{
		EnrollmentID: e.ID,
		PaymentType:  payment.TypeEnrollment,
		Amount:       tally.Major(136),
	})
	require.ErrorIs(t, err, tally.ErrOverpayment)
	assert.True(t, tally.IsInvalid(err))

	require.NoError(t, tl.RecordCoursePayment(ctx, &payment.Payment{
		EnrollmentID: e.ID,
		PaymentType:  payment.TypeEnrollment,
		Amount:       tally.Major(135),
	}))
}

func TestVoucherNumbers(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)
	e := enrollAll(t, tl, mustClassroom(t, tl, 0))

	p := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeEnrollment, Amount: tally.Major(10), VoucherNumber: "V-1"}
	require.NoError(t, tl.RecordCoursePayment(ctx, p))

	dup := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeEnrollment, Amount: tally.Major(10), VoucherNumber: "V-1"}
	err := tl.RecordCoursePayment(ctx, dup)
	require.ErrorIs(t, err, tally.ErrDuplicateVoucherNumber)

	got, err := tl.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, tally.Major(10), got.PaidAmount, "a refused payment changes nothing")

	seen := map[string]bool{"V-1": true}
	for range 20 {
		p := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeEnrollment, Amount: tally.Cents(1)}
		require.NoError(t, tl.RecordCoursePayment(ctx, p))
		require.False(t, seen[p.VoucherNumber], "voucher %s reused", p.VoucherNumber)
		seen[p.VoucherNumber] = true
	}
}

func TestPaymentRequiresEnrollment(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)

	err := tl.RecordCoursePayment(ctx, &payment.Payment{
		EnrollmentID: id.NewEnrollmentID(),
		PaymentType:  payment.TypeEnrollment,
		Amount:       tally.Major(10),
	})
	require.ErrorIs(t, err, tally.ErrEnrollmentNotFound)

	payments, err := tl.ListCoursePayments(ctx, payment.ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestGeneratePaymentVoucherOnce(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	tl, _ := newTally(t, tally.WithPlugin(rec))
	room := mustClassroom(t, tl, 0)
	e := enrollAll(t, tl, room)

	p := &payment.Payment{
		EnrollmentID:  e.ID,
		PaymentType:   payment.TypeEnrollment,
		Amount:        tally.Major(35),
		PaymentMethod: payment.MethodCard,
		ReceivedBy:    "Front desk",
	}
	require.NoError(t, tl.RecordCoursePayment(ctx, p))

	v, err := tl.GeneratePaymentVoucher(ctx, p.VoucherNumber)
	require.NoError(t, err)
	assert.Equal(t, p.ID, v.PaymentID)
	assert.Equal(t, "Sumi", v.StudentName)
	assert.Equal(t, "Networking", v.CourseName)
	assert.Equal(t, "Evening", v.BatchName)
	assert.Equal(t, tally.Major(35), v.Amount)
	assert.Equal(t, payment.MethodCard, v.PaymentMethod)
	assert.Equal(t, "Installment 1, 100.00 remaining", v.InstallmentInfo)

	again, err := tl.GeneratePaymentVoucher(ctx, p.VoucherNumber)
	require.NoError(t, err)
	assert.Equal(t, v.ID, again.ID)

	vouchers, err := tl.ListVouchers(ctx, payment.VoucherListOpts{PaymentID: p.ID})
	require.NoError(t, err)
	assert.Len(t, vouchers, 1)
	assert.Equal(t, []string{"payment_recorded", "voucher_generated"}, rec.seen())

	_, err = tl.GeneratePaymentVoucher(ctx, "PAY-missing")
	require.ErrorIs(t, err, tally.ErrPaymentNotFound)
}

func TestVoucherReportsMissingRecords(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)
	room := mustClassroom(t, tl, 0)
	e := enrollAll(t, tl, room)

	p := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeExam, Amount: tally.Major(5)}
	require.NoError(t, tl.RecordCoursePayment(ctx, p))
	require.NoError(t, tl.DeleteStudent(ctx, room.student.ID))
	require.NoError(t, tl.DeleteBatch(ctx, room.batch.ID))

	v, err := tl.GeneratePaymentVoucher(ctx, p.VoucherNumber)
	require.NoError(t, err)
	assert.Empty(t, v.StudentName)
	assert.Empty(t, v.BatchName)
	assert.Equal(t, "Networking", v.CourseName)
	assert.Equal(t, []string{"student", "batch"}, v.Missing)
}

func TestVoucherNumberOutlivesDeletedPayment(t *testing.T) {
	ctx := context.Background()
	tl, _ := newTally(t)
	e := enrollAll(t, tl, mustClassroom(t, tl, 0))

	first := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeEnrollment, Amount: tally.Major(10), VoucherNumber: "V-7"}
	require.NoError(t, tl.RecordCoursePayment(ctx, first))
	_, err := tl.GeneratePaymentVoucher(ctx, "V-7")
	require.NoError(t, err)
	require.NoError(t, tl.DeleteCoursePayment(ctx, first.ID))

	reuse := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeEnrollment, Amount: tally.Major(55), VoucherNumber: "V-7"}
	require.ErrorIs(t, tl.RecordCoursePayment(ctx, reuse), tally.ErrDuplicateVoucherNumber)

	v, err := tl.GetVoucher(ctx, "V-7")
	require.NoError(t, err)
	assert.Equal(t, first.ID, v.PaymentID)
	assert.Equal(t, tally.Major(10), v.Amount)
}

func TestFeeFlagSetBeforePaymentSurvivesDelete(t *testing.T) {
	ctx := context.Background()
	tl, s := newTally(t)
	e := enrollAll(t, tl, mustClassroom(t, tl, 0))

	// A restored backup can carry a paid flag with no payment behind it.
	e.AdmissionFeePaid = true
	require.NoError(t, s.UpdateEnrollment(ctx, e))

	p := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeAdmission, Amount: tally.Major(20)}
	require.NoError(t, tl.RecordCoursePayment(ctx, p))
	assert.True(t, p.FeeAlreadyPaid)
	require.NoError(t, tl.DeleteCoursePayment(ctx, p.ID))

	got, err := tl.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.AdmissionFeePaid)

	// Payments made on an unset flag still clear it when deleted.
	q := &payment.Payment{EnrollmentID: e.ID, PaymentType: payment.TypeExam, Amount: tally.Major(5), FeeAlreadyPaid: true}
	require.NoError(t, tl.RecordCoursePayment(ctx, q))
	assert.False(t, q.FeeAlreadyPaid, "the flag is derived, never taken from the caller")
	require.NoError(t, tl.DeleteCoursePayment(ctx, q.ID))
	got, err = tl.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.ExamFeePaid)
}
