package api

import (
	"net/url"
	"strings"
)

type AuthEndpoints struct {
	Login string
}

type TransactionEndpoints struct {
	C2BTransfer     string
	BuyGoods        string
	PayBill         string
	Airtime         string
	TopUpWallet     string
	AllTransactions string
}

type AccountEndpoints struct {
	Transactive         string
	OpenPersonal        string
	OpenForeignCurrency string
	OpenBusiness        string
	Current             string
	Savings             string

	base string
}

// Close returns the closure endpoint for one account.
func (a AccountEndpoints) Close(accountNo string) string {
	return a.base + "/post/close_account/" + url.PathEscape(accountNo)
}

type LoanEndpoints struct {
	Transactive   string
	UserLoans     string
	ApplyPersonal string
	ApplyBusiness string
	ApplyMortgage string
}

type TermDepositEndpoints struct {
	Book      string
	UserTDs   string
	Liquidate string
}

type HelpDeskEndpoints struct {
	RequestHelp string
	Report      string
}

type CardEndpoints struct {
	ApplyCredit  string
	ApplyDebit   string
	ApplyPrepaid string
	UserCredit   string
	UserDebit    string
	UserPrepaid  string
}

// Endpoints is the fixed table of backend URLs the portal talks to. Every
// endpoint is a POST.
type Endpoints struct {
	Auth         AuthEndpoints
	Transactions TransactionEndpoints
	Accounts     AccountEndpoints
	Loans        LoanEndpoints
	TermDeposits TermDepositEndpoints
	HelpDesk     HelpDeskEndpoints
	Cards        CardEndpoints
}

func NewEndpoints(baseURL string) Endpoints {
	base := strings.TrimRight(baseURL, "/")
	p := func(path string) string { return base + "/post/" + path }

	return Endpoints{
		Auth: AuthEndpoints{
			Login: p("login"),
		},
		Transactions: TransactionEndpoints{
			C2BTransfer:     p("transfer"),
			BuyGoods:        p("buygoods"),
			PayBill:         p("paybill"),
			Airtime:         p("airtime"),
			TopUpWallet:     p("topup_wallet"),
			AllTransactions: p("all_user_transactions"),
		},
		Accounts: AccountEndpoints{
			Transactive:         p("get_user_transactive_accounts"),
			OpenPersonal:        p("open_personal_account"),
			OpenForeignCurrency: p("open_foreign_currency_account"),
			OpenBusiness:        p("open_corporate_account"),
			Current:             p("get_user_current_accounts"),
			Savings:             p("get_user_savings_accounts"),
			base:                base,
		},
		Loans: LoanEndpoints{
			Transactive:   p("get_user_transactive_loans"),
			UserLoans:     p("get_user_loans"),
			ApplyPersonal: p("apply_personal_loan"),
			ApplyBusiness: p("apply_business_loan"),
			// The backend has no dedicated mortgage route yet.
			ApplyMortgage: p("apply_business_loan"),
		},
		TermDeposits: TermDepositEndpoints{
			Book:      p("book_td"),
			UserTDs:   p("get_user_term_deposits"),
			Liquidate: p("liquidate"),
		},
		HelpDesk: HelpDeskEndpoints{
			RequestHelp: p("request_help"),
			Report:      p("report_problem"),
		},
		Cards: CardEndpoints{
			ApplyCredit:  p("credit_card_application"),
			ApplyDebit:   p("debit_card_application"),
			ApplyPrepaid: p("prepaid_card_application"),
			UserCredit:   p("get_user_credit_cards"),
			UserDebit:    p("get_user_debit_cards"),
			UserPrepaid:  p("get_user_prepaid_cards"),
		},
	}
}
