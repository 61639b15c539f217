package report

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/ginjaninja78/payments-engine/internal/precision"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

// XMLWriter writes the report as an XML document.
//
// OUTPUT:
//   <?xml version="1.0" encoding="UTF-8"?>
//   <accounts count="1">
//     <account client="1">
//       <available>1.5000</available>
//       <held>0.0000</held>
//       <total>1.5000</total>
//       <locked>false</locked>
//     </account>
//   </accounts>
type XMLWriter struct {
	// Indent is the string used for indentation. Empty writes a single line.
	Indent string
}

type xmlAccounts struct {
	XMLName  xml.Name     `xml:"accounts"`
	Count    int          `xml:"count,attr"`
	Accounts []xmlAccount `xml:"account"`
}

type xmlAccount struct {
	Client    types.ClientID `xml:"client,attr"`
	Available string         `xml:"available"`
	Held      string         `xml:"held"`
	Total     string         `xml:"total"`
	Locked    bool           `xml:"locked"`
}

// Write implements Writer.
func (x XMLWriter) Write(w io.Writer, rows []types.AccountSummary) error {
	doc := xmlAccounts{Count: len(rows), Accounts: make([]xmlAccount, 0, len(rows))}
	for _, row := range rows {
		doc.Accounts = append(doc.Accounts, xmlAccount{
			Client:    row.Client,
			Available: precision.Format(row.Available),
			Held:      precision.Format(row.Held),
			Total:     precision.Format(row.Total),
			Locked:    row.Locked,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML declaration: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", x.Indent)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush XML: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}
