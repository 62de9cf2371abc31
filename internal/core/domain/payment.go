package domain

// PaymentSession is the opaque checkout descriptor returned by the
// payment service. The service surfaces it to the end client out-of-band.
type PaymentSession struct {
	ID         string
	URL        string
	CancelURL  string
	SuccessURL string
}

// PaymentNotice is the asynchronous payment-success event delivered by the
// payment service with at-least-once semantics.
type PaymentNotice struct {
	OrderID    string
	ChargeID   string
	ReceiptURL string
}
