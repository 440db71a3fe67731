// Package ofx reads deposits out of OFX/QFX bank statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/billable/internal/model"
	"github.com/aclindsa/ofxgo"
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Some SGML exports drop the closing bracket of bare opening tags.
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// Deposits parses a statement and returns its credits.
// Interest and dividend postings are not client payments and are skipped.
func (p *Parser) Deposits(ctx context.Context, reader io.Reader) ([]model.Deposit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var deposits []model.Deposit
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			if stmt.BankTranList == nil {
				continue
			}
			deposits = append(deposits, p.credits(stmt.BankTranList.Transactions, string(stmt.BankAcctFrom.AcctID))...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			if stmt.BankTranList == nil {
				continue
			}
			deposits = append(deposits, p.credits(stmt.BankTranList.Transactions, string(stmt.CCAcctFrom.AcctID))...)
		}
	}

	slog.Info("Parsed OFX file",
		"deposits", len(deposits),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return deposits, nil
}

func (p *Parser) credits(txns []ofxgo.Transaction, accountID string) []model.Deposit {
	var out []model.Deposit
	for _, tx := range txns {
		amount, _ := tx.TrnAmt.Float64()
		if amount <= 0 {
			continue
		}

		switch fmt.Sprintf("%v", tx.TrnType) {
		case "INT", "DIV":
			continue
		}

		out = append(out, model.Deposit{
			ID:        string(tx.FiTID),
			Date:      tx.DtPosted.Time,
			AccountID: accountID,
			Payee:     payeeName(tx),
			Memo:      strings.TrimSpace(string(tx.Memo)),
			Amount:    amount,
		})
	}
	return out
}

// payeeName prefers PAYEE, then NAME.
func payeeName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	return strings.TrimSpace(string(tx.Name))
}
