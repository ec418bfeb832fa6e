// Package format renders transaction rows into Slack message text. All
// functions are pure; the monitors own every bit of state.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/merehead/crypto-tx-notifier/internal/entities"
	"github.com/shopspring/decimal"
)

const dashboardBaseURL = "https://cryptoprocessing-stage.corp.merehead.xyz"

// decimalPlaces holds per-currency display precision. Currencies not
// listed fall back to two places.
var decimalPlaces = map[string]int32{
	"TRX":  2,
	"ETH":  6,
	"BTC":  7,
	"DOGE": 2,
	"USDT": 2,
	"USDC": 2,
}

// StatusText maps a transaction status to its display line. Unrecognized
// statuses are returned verbatim.
func StatusText(status string) string {
	switch status {
	case entities.StatusInProgress:
		return ":large_yellow_circle: Transaction in progress"
	case entities.StatusSuccess:
		return ":large_green_circle: Transaction success"
	case entities.StatusRejected:
		return ":red_circle: Transaction decline"
	case entities.StatusPending:
		return ":exclamation: Transaction awaiting provider approval @operations"
	default:
		return status
	}
}

// ExplorerLink returns the block-explorer URL for a transaction hash, or
// "" for networks without a configured explorer.
func ExplorerLink(network, hash string) string {
	switch network {
	case "trx":
		return fmt.Sprintf("https://tronscan.org/#/transaction/%s", hash)
	case "eth":
		return fmt.Sprintf("https://etherscan.io/tx/%s", hash)
	default:
		return ""
	}
}

// WithdrawalStatusText renders the status line for a withdrawal follow-up,
// appending the block-explorer link on success when the network has one.
func WithdrawalStatusText(status, network, hash string) string {
	text := StatusText(status)
	if status == entities.StatusSuccess {
		if link := ExplorerLink(network, hash); link != "" {
			text += "\n" + link
		}
	}
	return text
}

// FormatAmount renders an amount with the display precision of its currency.
func FormatAmount(amount decimal.Decimal, currency string) string {
	places, ok := decimalPlaces[strings.ToUpper(currency)]
	if !ok {
		places = 2
	}
	return amount.StringFixed(places)
}

// WithdrawalMessage renders the initial card for a manual cashout.
func WithdrawalMessage(tx entities.WithdrawalTransaction, merchantName, projectName string, realTransactionID int64) string {
	return fmt.Sprintf(`>*ManualCashout*
:man_in_tuxedo: <%s/merchant/%d/projects|%s> | <%s/merchant/%d/projects/%d/settings/details|%s>
:link: <%s/merchant/%d/project/%d/transaction/details/%d/crypto/withdrawal|Transaction #%d>
:money_with_wings: -%s %s

%s
`,
		dashboardBaseURL, tx.OwnerMerchantID, merchantName,
		dashboardBaseURL, tx.OwnerMerchantID, tx.ProjectID, projectName,
		dashboardBaseURL, tx.OwnerMerchantID, tx.ProjectID, realTransactionID, realTransactionID,
		FormatAmount(tx.Amount, tx.CurrencyNetwork), tx.CurrencyNetwork,
		StatusText(tx.Status))
}

// DepositMessage renders the risk-alert card for a scored deposit.
func DepositMessage(tx entities.DepositTransaction, merchantName, projectName string, realTransactionID int64) string {
	return fmt.Sprintf(`>*Deposit transaction by <%s/merchant/%d/projects|%s> for project <%s/merchant/%d/projects/%d/settings/details|%s>*

:money_with_wings: Amount: %s %s
:name_badge: Risk Score: %s

<%s/merchant/%d/project/%d/transaction/details/%d/crypto/depos|Transaction #%d>

%s
`,
		dashboardBaseURL, tx.OwnerMerchantID, merchantName,
		dashboardBaseURL, tx.OwnerMerchantID, tx.ProjectID, projectName,
		FormatAmount(tx.Amount, tx.CurrencyName), tx.CurrencyName,
		riskScore(tx.RiskScore),
		dashboardBaseURL, tx.OwnerMerchantID, tx.ProjectID, realTransactionID, realTransactionID,
		StatusText(tx.Status))
}

// ExchangeMessage renders the initial card for a currency exchange.
func ExchangeMessage(tx entities.ExchangeTransaction, merchantName, projectName string) string {
	return fmt.Sprintf(`>*Exchange*
:man_in_tuxedo: <%s/merchant/%d/projects|%s> | <%s/merchant/%d/projects/%d/settings/details|%s>
:currency_exchange: %s %s -> %s %s
:chart_with_upwards_trend: Rate: %s
:money_with_wings: Fee: %s %s

%s
`,
		dashboardBaseURL, tx.OwnerMerchantID, merchantName,
		dashboardBaseURL, tx.OwnerMerchantID, tx.ProjectID, projectName,
		FormatAmount(tx.AmountFrom, tx.CurrencyFrom), strings.ToUpper(tx.CurrencyFrom),
		FormatAmount(tx.AmountTo, tx.CurrencyTo), strings.ToUpper(tx.CurrencyTo),
		tx.Rate.String(),
		FormatAmount(tx.FeeExchange, tx.CurrencyTo), tx.CurrencyTo,
		StatusText(tx.Status))
}

func riskScore(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*score, 'g', -1, 64)
}
