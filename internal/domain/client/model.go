package client

// Address is a postal address for an invoice party. Street and building
// number are optional because older records were captured without them.
type Address struct {
	Name           string  `json:"name" validate:"required"`
	Street         *string `json:"street,omitempty"`
	BuildingNumber *string `json:"building_number,omitempty"`
	PostalCode     string  `json:"postal_code" validate:"required"`
	City           string  `json:"city" validate:"required"`
	Country        string  `json:"country" validate:"required,len=2"`
}

// Client represents the client domain model
type Client struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	// Address is the client's primary address
	Address Address `json:"address" validate:"required"`
	// BillingAddress is set only when invoices go to a different address
	BillingAddress *Address `json:"billing_address,omitempty"`
}

// EffectiveBillingAddress returns the address invoices are sent to, falling
// back to the primary address for records without a distinct billing address.
func (c *Client) EffectiveBillingAddress() Address {
	if c.BillingAddress != nil {
		return *c.BillingAddress
	}
	return c.Address
}
