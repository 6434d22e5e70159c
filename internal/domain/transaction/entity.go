package transaction

// PurchaseTransaction is a sale recorded by the point-of-sale screens.
// Only the fields the analytics read are modelled.
type PurchaseTransaction struct {
	ID      string     `json:"id,omitempty"`
	Date    string     `json:"date"`
	Staff   string     `json:"staff"`
	StaffID string     `json:"staffId,omitempty"`
	Amount  float64    `json:"amount"`
	Items   []LineItem `json:"items"`
}

type LineItem struct {
	Name             string  `json:"name,omitempty"`
	AssignedPerson   string  `json:"assignedPerson"`
	AssignedPersonID string  `json:"assignedPersonId,omitempty"`
	Price            float64 `json:"price"`
	Qty              int     `json:"qty"`
}

// Quantity treats a missing or zero quantity as one unit.
func (i LineItem) Quantity() int {
	if i.Qty == 0 {
		return 1
	}
	return i.Qty
}

// Day returns the calendar day of the transaction. Dates stored as full
// timestamps are cut to their YYYY-MM-DD prefix.
func (t PurchaseTransaction) Day() string {
	if len(t.Date) >= 10 {
		return t.Date[:10]
	}
	return t.Date
}
