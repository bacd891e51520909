package router

// Route is one page of the portal.
type Route struct {
	Name         string   `json:"view"`
	Path         string   `json:"path"`
	Aliases      []string `json:"aliases,omitempty"`
	RequiresAuth bool     `json:"requires_auth"`
}

const (
	LoginPath              = "/login"
	HomePath               = "/home"
	FailedPath             = "/failed"
	InvalidCredentialsPath = "/invalid_credentials"

	NotFoundName = "Not_Found"
)

// Routes is the portal's page table. Paths are public URLs and must stay
// stable.
var Routes = []Route{
	// Transacting
	{Name: "Goods", Path: "/buygoods", RequiresAuth: true},
	{Name: "Bill", Path: "/paybill", RequiresAuth: true},
	{Name: "Air_Time", Path: "/airtime", RequiresAuth: true},
	{Name: "Transfer", Path: "/transfer_funds", RequiresAuth: true},

	// Card applications
	{Name: "Debit_App", Path: "/debit_card_application", RequiresAuth: true},
	{Name: "Credit_App", Path: "/credit_card_application", RequiresAuth: true},
	{Name: "Prepaid_App", Path: "/prepaid_card_application", RequiresAuth: true},

	// Third-party wallets
	{Name: "Amazon_Pay", Path: "/amazon_pay", RequiresAuth: true},
	{Name: "Apple_Pay", Path: "/apple_pay", RequiresAuth: true},
	{Name: "Google_Pay", Path: "/google_pay", RequiresAuth: true},
	{Name: "Pay_Pal", Path: "/pay_pal", RequiresAuth: true},

	// Account products
	{Name: "Savings_Account", Path: "/savings_account", RequiresAuth: true},
	{Name: "Investment_Banking", Path: "/investment_banking", RequiresAuth: true},
	{Name: "Transactional_Account", Path: "/transactional_account", RequiresAuth: true},
	{Name: "Corporate_Account", Path: "/corporate_account", RequiresAuth: true},

	// Customer service
	{Name: "Customer_Service", Path: "/customer_service", RequiresAuth: true},
	{Name: "Report_Problem", Path: "/report_problem", RequiresAuth: true},

	// Main
	{Name: "Home", Path: HomePath, RequiresAuth: true},
	{Name: "Financial_Markets", Path: "/financial_markets", RequiresAuth: true},
	{Name: "My_Cards", Path: "/my_cards", RequiresAuth: true},
	{Name: "New_Account", Path: "/new_account", RequiresAuth: true},
	{Name: "Transaction_History", Path: "/transaction_history", RequiresAuth: true},
	{Name: "New_Loan", Path: "/loan_application", RequiresAuth: true},
	{Name: "Account_Closure", Path: "/account_closure", RequiresAuth: true},

	// Error pages
	{Name: "Error_pg", Path: FailedPath},
	{Name: "Login_Error_pg", Path: InvalidCredentialsPath},

	{Name: "Login_Page", Path: "/", Aliases: []string{LoginPath}},

	// Manuals
	{Name: "Manual_Open_Account", Path: "/instructions_on_opening_transactional_account", RequiresAuth: true},

	{Name: "Success_Pg", Path: "/success", RequiresAuth: true},
	{Name: "Term_Deposit", Path: "/appy_term_deposit", RequiresAuth: true},
}
