package models

// CategorySeed is one entry of the default taxonomy installed on first run.
type CategorySeed struct {
	Name          string
	IsExpense     bool
	SubCategories []string
}

// DefaultTaxonomy returns the built-in category tree. Top-level names follow
// the provider's primary categories; subcategory names are the normalized
// forms of the provider's detailed labels, so categorization can match them
// by exact name.
func DefaultTaxonomy() []CategorySeed {
	return []CategorySeed{
		{
			Name:      "Income",
			IsExpense: false,
			SubCategories: []string{
				"Wages", "Dividends", "Interest Earned", "Retirement Pension",
				"Tax Refund", "Unemployment", "Other Income",
			},
		},
		{
			Name:      "Food And Drink",
			IsExpense: true,
			SubCategories: []string{
				"Groceries", "Restaurant", "Fast Food", "Coffee",
				"Beer Wine And Liquor", "Vending Machines", "Other Food And Drink",
			},
		},
		{
			Name:      "Transportation",
			IsExpense: true,
			SubCategories: []string{
				"Public Transit", "Taxis And Ride Shares", "Gas", "Parking",
				"Tolls", "Bikes And Scooters", "Other Transportation",
			},
		},
		{
			Name:      "Travel",
			IsExpense: true,
			SubCategories: []string{
				"Flights", "Lodging", "Rental Cars", "Other Travel",
			},
		},
		{
			Name:      "Rent And Utilities",
			IsExpense: true,
			SubCategories: []string{
				"Rent", "Gas And Electricity", "Water", "Internet And Cable",
				"Telephone", "Sewage And Waste Management", "Other Utilities",
			},
		},
		{
			Name:      "General Merchandise",
			IsExpense: true,
			SubCategories: []string{
				"Clothing And Accessories", "Electronics", "Convenience Stores",
				"Department Stores", "Discount Stores", "Online Marketplaces",
				"Pet Supplies", "Superstores", "Sporting Goods", "Tobacco And Vape",
				"Bookstores And Newsstands", "Gifts And Novelties", "Office Supplies",
				"Other General Merchandise",
			},
		},
		{
			Name:      "Entertainment",
			IsExpense: true,
			SubCategories: []string{
				"Movies And Tv", "Music And Audio", "Video Games",
				"Sporting Events Amusement Parks And Museums", "Casinos And Gambling",
				"Other Entertainment",
			},
		},
		{
			Name:      "Personal Care",
			IsExpense: true,
			SubCategories: []string{
				"Gyms And Fitness Centers", "Hair And Beauty",
				"Laundry And Dry Cleaning", "Other Personal Care",
			},
		},
		{
			Name:      "Medical",
			IsExpense: true,
			SubCategories: []string{
				"Primary Care", "Dental Care", "Eye Care", "Pharmacies And Supplements",
				"Veterinary Services", "Nursing Care", "Other Medical",
			},
		},
		{
			Name:      "General Services",
			IsExpense: true,
			SubCategories: []string{
				"Accounting And Financial Planning", "Automotive", "Childcare",
				"Consulting And Legal", "Education", "Insurance", "Postage And Shipping",
				"Storage", "Other General Services",
			},
		},
		{
			Name:      "Home Improvement",
			IsExpense: true,
			SubCategories: []string{
				"Furniture", "Hardware", "Repair And Maintenance", "Security",
				"Other Home Improvement",
			},
		},
		{
			Name:      "Loan Payments",
			IsExpense: true,
			SubCategories: []string{
				"Car Payment", "Credit Card Payment", "Mortgage Payment",
				"Personal Loan Payment", "Student Loan Payment", "Other Payment",
			},
		},
		{
			Name:      "Bank Fees",
			IsExpense: true,
			SubCategories: []string{
				"Atm Fees", "Foreign Transaction Fees", "Insufficient Funds",
				"Interest Charge", "Overdraft Fees", "Other Bank Fees",
			},
		},
		{
			Name:      "Transfer In",
			IsExpense: false,
			SubCategories: []string{
				"Cash Advances And Loans", "Deposit", "Investment And Retirement Funds",
				"Savings", "Account Transfer", "Other Transfer In",
			},
		},
		{
			Name:      "Transfer Out",
			IsExpense: true,
			SubCategories: []string{
				"Withdrawal", "Other Transfer Out",
			},
		},
		{
			Name:      "Government And Non Profit",
			IsExpense: true,
			SubCategories: []string{
				"Donations", "Government Departments And Agencies", "Tax Payment",
				"Other Government And Non Profit",
			},
		},
	}
}
