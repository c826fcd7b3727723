package webhook

import "strings"

// hotmartPayload mirrors the loosely structured notification body. The
// platform nests buyer and purchase data under "data" on newer webhook
// versions and keeps them at the top level on older ones, so every field has
// a fallback chain.
type hotmartPayload struct {
	Data *hotmartData `json:"data"`
	hotmartData
}

type hotmartData struct {
	Buyer *hotmartBuyer `json:"buyer"`
	hotmartBuyer

	Product *struct {
		Name string `json:"name"`
	} `json:"product"`
	ProductName string `json:"product_name"`

	Purchase *struct {
		Transaction string `json:"transaction"`
	} `json:"purchase"`
	Transaction string `json:"transaction"`
}

type hotmartBuyer struct {
	Name          string `json:"name"`
	FirstName     string `json:"first_name"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phone_number"`
	Phone         string `json:"phone"`
	CheckoutPhone string `json:"checkout_phone"`
}

// extracted is the fixed shape intake consumes.
type extracted struct {
	Name          string
	Email         string
	Phone         string
	ProductName   string
	TransactionID string
}

// extract flattens the payload variants into one lead candidate.
func extract(p hotmartPayload) extracted {
	data := p.hotmartData
	if p.Data != nil {
		data = *p.Data
	}
	buyer := data.hotmartBuyer
	if data.Buyer != nil {
		buyer = *data.Buyer
	}

	out := extracted{
		Name:  firstNonEmpty(buyer.Name, buyer.FirstName),
		Email: strings.ToLower(strings.TrimSpace(buyer.Email)),
		Phone: firstNonEmpty(buyer.PhoneNumber, buyer.Phone, buyer.CheckoutPhone),
	}
	if data.Product != nil && data.Product.Name != "" {
		out.ProductName = data.Product.Name
	} else {
		out.ProductName = data.ProductName
	}
	if data.Purchase != nil && data.Purchase.Transaction != "" {
		out.TransactionID = data.Purchase.Transaction
	} else {
		out.TransactionID = data.Transaction
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
