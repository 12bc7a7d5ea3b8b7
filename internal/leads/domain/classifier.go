package domain

// Effects flags which side effects a status transition triggers.
type Effects struct {
	// EnteringFollowup fires when the new status is one of the follow-up
	// family and the old status was not. A move between two follow-up
	// sub-statuses does not fire.
	EnteringFollowup bool
	// EnteringSalePaymentDone fires on genuine entry into Sale Payment Done.
	EnteringSalePaymentDone bool
	// EnteringProductPurchased fires on genuine entry into Product Purchased.
	EnteringProductPurchased bool
}

// Any reports whether at least one effect fires.
func (e Effects) Any() bool {
	return e.EnteringFollowup || e.EnteringSalePaymentDone || e.EnteringProductPurchased
}

// Classify computes the side effects of moving a lead from oldStatus to
// newStatus. An empty newStatus means the update requested no status change.
// Re-saving the same status fires nothing, so repeated saves are idempotent.
func Classify(oldStatus, newStatus Status) Effects {
	if newStatus == "" || newStatus == oldStatus {
		return Effects{}
	}

	return Effects{
		EnteringFollowup:         newStatus.IsFollowup() && !oldStatus.IsFollowup(),
		EnteringSalePaymentDone:  newStatus == StatusSalePaymentDone,
		EnteringProductPurchased: newStatus == StatusProductPurchased,
	}
}
