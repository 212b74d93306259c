package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// ColumnHeaders is the fixed output schema. Every extracted line item becomes
// one row with exactly these columns, in this order.
var ColumnHeaders = []string{
	"PUSB", "PO_NUMBER", "SOS", "CUSTPROFCODE", "ITRANSPROUTECODE", "POCREATEDATE",
	"POLINESEQNR", "MMMPRODID", "ORDERQTY", "SELLINGUNIT", "SUPPLY CHAIN UNIT",
	"PRODUCT DESCRIPTION", "SPECIAL HANDLING", "LINE INSTRUCTION", "ADDRESS",
	"EXPORT MARKS", "ORDER INSTRUCTION", "EXPC SHIP TYPE CODE", "EXPC SHIP DATE",
	"SAP PO NUMBER",
}

// FlattenMessage parses one intercompany message tolerantly and returns one
// row per purchase-order line item, aligned with ColumnHeaders. Missing or
// empty fields degrade to defaults; only a document with no usable tree at
// all is rejected, with ErrMalformedMessage.
func FlattenMessage(msg string) ([][]string, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if doc.Root() == nil {
		return nil, ErrMalformedMessage
	}

	var pusb, poNumber string
	if po := doc.FindElement("//purchaseOrder"); po != nil {
		pusb = po.SelectAttrValue("PUSB", "")
		poNumber = po.SelectAttrValue("orderNumber", "")
	}

	sos := firstText(doc, "//purchaseOrder//header//SoS")
	custProfCode := firstText(doc, "//purchaseOrder//header//customerProfileCode")
	if custProfCode != "" {
		custProfCode = "STC " + custProfCode
	}
	routeCode := firstText(doc, "//purchaseOrder//header//internationalTransportationRouteCode")
	poCreateDate := reformatDate(firstText(doc, "//purchaseOrder//header//purchaseOrderCreationDate"))

	// Ship-to address lines are joined in reverse document order. That is a
	// behavioral contract inherited from the consuming system, not a bug.
	var addrLines []string
	for _, el := range doc.FindElements("//purchaseOrder//header//purchaseOrderDetails//purchaseOrderDetail[@type='shiptoaddress']") {
		if text := el.Text(); text != "" {
			addrLines = append(addrLines, text)
		}
	}
	for left, right := 0, len(addrLines)-1; left < right; left, right = left+1, right-1 {
		addrLines[left], addrLines[right] = addrLines[right], addrLines[left]
	}
	address := strings.Join(addrLines, "; ")

	var instruction strings.Builder
	for _, el := range doc.FindElements("//purchaseOrder//header//specialInstructions//specialInstruction[@type='AH']") {
		instruction.WriteString(el.Text())
	}
	orderInstruction := instruction.String()
	if orderInstruction != "" {
		orderInstruction = "C" + orderInstruction
	} else {
		orderInstruction = "null"
	}

	lineItems := doc.FindElements("//purchaseOrder//lineItems//lineItem")
	rows := make([][]string, 0, len(lineItems))
	for _, li := range lineItems {
		sellingUnit := joinedText(li, "./sellingUnit")
		sapPONumber := joinedText(li, "./purchasingCompanyReferenceNumber")
		if sapPONumber == "" {
			sapPONumber = "null"
		}
		rows = append(rows, []string{
			pusb,
			poNumber,
			sos,
			custProfCode,
			routeCode,
			poCreateDate,
			normalizeSequenceNumber(li.SelectAttrValue("sequenceNumber", "")),
			joinedText(li, "./productIdentifier"),
			joinedText(li, "./orderQuantity"),
			sellingUnit,
			sellingUnit, // SUPPLY CHAIN UNIT duplicates SELLINGUNIT
			joinedText(li, "./lineItemDetails/lineItemDetail[@type='purchaseritemdescription']"),
			joinedText(li, "./lineItemDetails/lineItemDetail[@type='specialhandlingcode']"),
			"", // LINE INSTRUCTION
			address,
			"", // EXPORT MARKS
			orderInstruction,
			joinedAttr(li, "./requestedShipmentDate", "type"),
			reformatDate(joinedText(li, "./requestedShipmentDate")),
			sapPONumber,
		})
	}
	return rows, nil
}

func firstText(doc *etree.Document, path string) string {
	if el := doc.FindElement(path); el != nil {
		return el.Text()
	}
	return ""
}

// joinedText collects the non-empty text of every element matching path under
// el, space-joined. Absent elements yield "".
func joinedText(el *etree.Element, path string) string {
	var parts []string
	for _, match := range el.FindElements(path) {
		if text := match.Text(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func joinedAttr(el *etree.Element, path, key string) string {
	var parts []string
	for _, match := range el.FindElements(path) {
		if attr := match.SelectAttr(key); attr != nil {
			parts = append(parts, attr.Value)
		}
	}
	return strings.Join(parts, " ")
}

// reformatDate converts YYYY-MM-DD to DD.MM.YYYY. Empty or unparsable input
// yields "" rather than an error.
func reformatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return ""
	}
	return parsed.Format("02.01.2006")
}

// normalizeSequenceNumber strips leading zeros from all-digit sequence
// numbers ("007" -> "7"); anything else passes through unchanged.
func normalizeSequenceNumber(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !isDigits(raw) {
		return raw
	}
	trimmed := strings.TrimLeft(raw, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
