package invoice

import (
	"encoding/json"
	"time"
)

// Keys of the field mapping handed to the persistence layer.
const (
	KeyInvoiceNumber = "invoice_number"
	KeyInvoiceDate   = "invoice_date"
	KeyIssuer        = "issuer"
	KeyAmountCents   = "amount_cents"
)

// DateLayout is the ISO form used for invoice dates on the wire.
const DateLayout = "2006-01-02"

// ExtractedFields is the result of scanning one invoice file.
type ExtractedFields struct {
	InvoiceNumber Field[string]
	InvoiceDate   Field[time.Time]
	Issuer        Field[string]
	AmountCents   Field[int64]
}

// Empty reports whether no field was found at all.
func (f *ExtractedFields) Empty() bool {
	return !f.InvoiceNumber.IsSet() && !f.InvoiceDate.IsSet() &&
		!f.Issuer.IsSet() && !f.AmountCents.IsSet()
}

// Map converts the fields to the loosely typed mapping used by callers:
// absent keys mean "not found", Raw fields are represented by their text.
func (f *ExtractedFields) Map() map[string]any {
	m := make(map[string]any, 4)
	if v, ok := f.InvoiceNumber.Value(); ok {
		m[KeyInvoiceNumber] = v
	} else if raw, ok := f.InvoiceNumber.RawText(); ok {
		m[KeyInvoiceNumber] = raw
	}
	if v, ok := f.InvoiceDate.Value(); ok {
		m[KeyInvoiceDate] = v.Format(DateLayout)
	} else if raw, ok := f.InvoiceDate.RawText(); ok {
		m[KeyInvoiceDate] = raw
	}
	if v, ok := f.Issuer.Value(); ok {
		m[KeyIssuer] = v
	} else if raw, ok := f.Issuer.RawText(); ok {
		m[KeyIssuer] = raw
	}
	if v, ok := f.AmountCents.Value(); ok {
		m[KeyAmountCents] = v
	} else if raw, ok := f.AmountCents.RawText(); ok {
		m[KeyAmountCents] = raw
	}
	return m
}

func (f *ExtractedFields) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Map())
}
