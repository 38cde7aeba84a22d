package types

// Balance is the account's credit state.
type Balance struct {
	// Balance is the spendable credit amount.
	Balance float64 `json:"balance"`
	// Frozen is the amount reserved for tasks still in flight.
	Frozen float64 `json:"frozen"`
}
