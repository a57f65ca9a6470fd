package orders

import "github.com/junaidrashid-git/fashionshop-api/models"

// Forward moves staff may make. Cancellation is handled separately by Cancel.
var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusConfirmed},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing},
	models.OrderStatusProcessing: {models.OrderStatusShipped},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {models.OrderStatusCompleted},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	if to == models.OrderStatusCancelled {
		return !from.IsTerminal()
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses lists where an order can go from its current status.
func NextStatuses(from models.OrderStatus) []models.OrderStatus {
	if from.IsTerminal() {
		return nil
	}
	next := append([]models.OrderStatus{}, allowedTransitions[from]...)
	return append(next, models.OrderStatusCancelled)
}

// customerCancellable is the window in which shoppers may cancel on their own.
func customerCancellable(s models.OrderStatus) bool {
	return s == models.OrderStatusPending || s == models.OrderStatusConfirmed
}
