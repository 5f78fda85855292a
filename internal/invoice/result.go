// Package invoice extracts the export-invoice fields from the data page of a
// document: invoice number and date, buyer name and address, invoice value
// and exchange rate.
package invoice

// Result holds the fields taken from one invoice. A field that was not found
// is the empty string, never absent.
type Result struct {
	InvoiceNumberAndDate string `json:"invoiceNumberAndDate"`
	BuyerAddress         string `json:"buyerAddress"`
	InvoiceValue         string `json:"invoiceValue"`
	ExchangeRate         string `json:"exchangeRate"`
}

// Values returns the fields in output column order.
func (r Result) Values() []string {
	return []string{r.InvoiceNumberAndDate, r.BuyerAddress, r.InvoiceValue, r.ExchangeRate}
}

// FieldLabels are the column labels matching Values.
var FieldLabels = []string{"Invoice No & Dt", "Buyers Name & Address", "Invoice Value", "Exchange Rate"}
