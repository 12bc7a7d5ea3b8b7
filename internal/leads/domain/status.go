// Package domain provides core business rules for the leads bounded context.
package domain

// Status is a lead's workflow state. The system keeps the source CRM's loose
// discipline: any status may follow any other. The transition classifier is
// where entering certain statuses gains meaning.
type Status string

const (
	StatusNew              Status = "New"
	StatusAttemptedContact Status = "Attempted Contact"
	StatusContacted        Status = "Contacted"
	StatusQuoted           Status = "Quoted"
	StatusNegotiation      Status = "Negotiation"
	StatusFollowUp         Status = "Follow up"
	StatusPaymentFollowUp  Status = "Payment Follow up"
	StatusDeliveryFollowUp Status = "Delivery Follow up"
	StatusSalePaymentDone  Status = "Sale Payment Done"
	StatusProductPurchased Status = "Product Purchased"
	StatusShipped          Status = "Shipped"
	StatusDelivered        Status = "Delivered"
	StatusCompleted        Status = "Completed"
	StatusRefundInitiated  Status = "Refund Initiated"
	StatusRefunded         Status = "Refunded"
	StatusDispute          Status = "Dispute"
	StatusChargeback       Status = "Chargeback"
	StatusCancelled        Status = "Cancelled"
	StatusNotInterested    Status = "Not Interested"
	StatusOutOfStock       Status = "Out of Stock"
)

var allStatuses = map[Status]bool{
	StatusNew:              true,
	StatusAttemptedContact: true,
	StatusContacted:        true,
	StatusQuoted:           true,
	StatusNegotiation:      true,
	StatusFollowUp:         true,
	StatusPaymentFollowUp:  true,
	StatusDeliveryFollowUp: true,
	StatusSalePaymentDone:  true,
	StatusProductPurchased: true,
	StatusShipped:          true,
	StatusDelivered:        true,
	StatusCompleted:        true,
	StatusRefundInitiated:  true,
	StatusRefunded:         true,
	StatusDispute:          true,
	StatusChargeback:       true,
	StatusCancelled:        true,
	StatusNotInterested:    true,
	StatusOutOfStock:       true,
}

// followupStatuses are the three sub-statuses whose genuine entry schedules a
// follow-up record. Moving between two of them does not count as entry.
var followupStatuses = map[Status]bool{
	StatusFollowUp:         true,
	StatusPaymentFollowUp:  true,
	StatusDeliveryFollowUp: true,
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return allStatuses[s]
}

// IsFollowup reports whether s belongs to the follow-up status family.
func (s Status) IsFollowup() bool {
	return followupStatuses[s]
}
