package booking

// PaymentStatus tracks payment independently of the scheduling lifecycle.
// It is mutated only by the payment event consumer, never by lifecycle
// transitions.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// IsValid returns true if the payment status is recognized.
func (s PaymentStatus) IsValid() bool {
	return s == PaymentUnpaid || s == PaymentPaid
}
