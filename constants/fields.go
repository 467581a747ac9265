package constants

// Display names for the six extracted invoice fields. These are the labels
// printed on mainland-China VAT invoices and are reported verbatim, so they
// stay in Chinese.
const (
	FieldInvoiceNumber      = "发票号码"
	FieldInvoiceAmount      = "开票金额"
	FieldTaxRate            = "税率"
	FieldAmountExcludingTax = "不含税金额"
	FieldTaxAmount          = "税额"
	FieldInvoiceDate        = "开票日期"
)

// AllFieldNames lists every field display name in report order.
var AllFieldNames = []string{
	FieldInvoiceNumber,
	FieldInvoiceAmount,
	FieldTaxRate,
	FieldAmountExcludingTax,
	FieldTaxAmount,
	FieldInvoiceDate,
}

// CriticalFieldNames are the monetary/rate fields; when every one of them is
// unextractable the row cannot be verified at all.
var CriticalFieldNames = []string{
	FieldInvoiceAmount,
	FieldTaxRate,
	FieldAmountExcludingTax,
	FieldTaxAmount,
}
