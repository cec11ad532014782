package services

import (
	"math/rand"
	"sort"
	"time"

	"centsible/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	salaryHour         = 9
	billPaymentHour    = 14
	businessHoursStart = 6
	businessHoursEnd   = 23
	payCycleDays       = 14
)

// merchantProfile ties a merchant name to the subcategory its spend lands
// in and a realistic amount range.
type merchantProfile struct {
	name        string
	subcategory string
	minAmount   float64
	maxAmount   float64
}

var purchaseProfiles = []merchantProfile{
	{"Kroger", "Groceries", 15, 220},
	{"Whole Foods Market", "Groceries", 25, 180},
	{"Trader Joe's", "Groceries", 12, 120},
	{"Aldi", "Groceries", 10, 90},
	{"Starbucks", "Coffee", 4, 18},
	{"Dunkin'", "Coffee", 3, 14},
	{"Chipotle Mexican Grill", "Fast Food", 10, 35},
	{"McDonald's", "Fast Food", 6, 25},
	{"Olive Garden", "Restaurant", 25, 95},
	{"Panera Bread", "Restaurant", 12, 40},
	{"Shell", "Gas", 25, 75},
	{"Chevron", "Gas", 25, 80},
	{"Uber", "Taxis And Ride Shares", 8, 55},
	{"Lyft", "Taxis And Ride Shares", 8, 50},
	{"Metro Transit", "Public Transit", 2, 12},
	{"Amazon.com", "Online Marketplaces", 12, 180},
	{"Target", "Superstores", 20, 200},
	{"Best Buy", "Electronics", 30, 600},
	{"Macy's", "Department Stores", 25, 250},
	{"7-Eleven", "Convenience Stores", 3, 30},
	{"Petco", "Pet Supplies", 10, 90},
	{"AMC Theatres", "Movies And Tv", 12, 45},
	{"Spotify", "Music And Audio", 10, 17},
	{"Steam", "Video Games", 5, 70},
	{"Total Wine", "Beer Wine And Liquor", 15, 85},
	{"Delta Air Lines", "Flights", 120, 650},
	{"Marriott Hotels", "Lodging", 110, 420},
	{"CVS Pharmacy", "Other General Merchandise", 8, 60},
}

var billProfiles = []merchantProfile{
	{"City Properties LLC", "Rent", 1400, 2200},
	{"Pacific Gas And Electric", "Gas And Electricity", 60, 220},
	{"Comcast Xfinity", "Internet And Cable", 55, 120},
	{"Verizon Wireless", "Telephone", 45, 110},
	{"City Water Department", "Water", 30, 80},
}

// TransactionGeneratorInterface produces realistic synthetic bank
// transactions for development environments.
type TransactionGeneratorInterface interface {
	GenerateHistory(userID uuid.UUID, accountID uint, startDate, endDate time.Time, count int) ([]*models.BankTransaction, error)
}

// transactionGenerator builds histories out of a fixed merchant pool so
// generated spend maps onto the seeded taxonomy. Amounts keep the provider
// sign convention: positive is money out, negative is money in.
type transactionGenerator struct {
	resolver CategoryResolverInterface
	faker    *gofakeit.Faker
	rng      *rand.Rand
}

// NewTransactionGenerator creates a generator seeded from the clock
func NewTransactionGenerator(resolver CategoryResolverInterface) TransactionGeneratorInterface {
	seed := time.Now().UnixNano()
	return &transactionGenerator{
		resolver: resolver,
		faker:    gofakeit.New(uint64(seed)),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// GenerateHistory produces bi-weekly salary credits, monthly bills, and
// count random purchases across the date range, sorted oldest first.
func (g *transactionGenerator) GenerateHistory(userID uuid.UUID, accountID uint, startDate, endDate time.Time, count int) ([]*models.BankTransaction, error) {
	transactions := make([]*models.BankTransaction, 0, count)

	salary, err := g.generateSalary(userID, accountID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	transactions = append(transactions, salary...)

	bills, err := g.generateBills(userID, accountID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	transactions = append(transactions, bills...)

	for i := 0; i < count; i++ {
		profile := purchaseProfiles[g.rng.Intn(len(purchaseProfiles))]
		txn, err := g.buildTransaction(userID, accountID, profile, g.randomTimestamp(startDate, endDate))
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].TransactionDate.Before(transactions[j].TransactionDate)
	})
	return transactions, nil
}

func (g *transactionGenerator) generateSalary(userID uuid.UUID, accountID uint, startDate, endDate time.Time) ([]*models.BankTransaction, error) {
	employer := g.faker.Company()
	baseSalary := g.faker.Price(1800, 3200)

	var transactions []*models.BankTransaction
	for payDate := startDate.Add(payCycleDays * 24 * time.Hour); payDate.Before(endDate); payDate = payDate.Add(payCycleDays * 24 * time.Hour) {
		date := time.Date(payDate.Year(), payDate.Month(), payDate.Day(), salaryHour, 0, 0, 0, time.UTC)

		txn := &models.BankTransaction{
			ID:              uuid.New(),
			UserID:          userID,
			BankAccountID:   accountID,
			ExternalID:      "dev-" + uuid.NewString(),
			Merchant:        employer,
			Description:     "Direct Deposit - Salary",
			TransactionDate: date,
			Amount:          decimal.NewFromFloat(baseSalary).Round(2).Neg(),
		}
		if err := g.tag(txn, "Wages"); err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	return transactions, nil
}

func (g *transactionGenerator) generateBills(userID uuid.UUID, accountID uint, startDate, endDate time.Time) ([]*models.BankTransaction, error) {
	var transactions []*models.BankTransaction
	for month := time.Date(startDate.Year(), startDate.Month(), 1, 0, 0, 0, 0, time.UTC); month.Before(endDate); month = month.AddDate(0, 1, 0) {
		for _, profile := range billProfiles {
			billDate := time.Date(month.Year(), month.Month(), 1+g.rng.Intn(28), billPaymentHour, 0, 0, 0, time.UTC)
			if billDate.Before(startDate) || billDate.After(endDate) {
				continue
			}

			txn, err := g.buildTransaction(userID, accountID, profile, billDate)
			if err != nil {
				return nil, err
			}
			transactions = append(transactions, txn)
		}
	}
	return transactions, nil
}

func (g *transactionGenerator) buildTransaction(userID uuid.UUID, accountID uint, profile merchantProfile, date time.Time) (*models.BankTransaction, error) {
	txn := &models.BankTransaction{
		ID:              uuid.New(),
		UserID:          userID,
		BankAccountID:   accountID,
		ExternalID:      "dev-" + uuid.NewString(),
		Merchant:        profile.name,
		Description:     profile.name,
		TransactionDate: date,
		Amount:          decimal.NewFromFloat(g.faker.Price(profile.minAmount, profile.maxAmount)).Round(2),
	}
	if err := g.tag(txn, profile.subcategory); err != nil {
		return nil, err
	}
	return txn, nil
}

// tag attaches the named subcategory when the seeded taxonomy has an
// active match. Unmatched names leave the transaction uncategorized, the
// same contract sync uses for provider labels.
func (g *transactionGenerator) tag(txn *models.BankTransaction, subcategory string) error {
	sub, ok, err := g.resolver.ResolveName(subcategory)
	if err != nil {
		return err
	}
	if ok {
		txn.Subcategories = []models.SubCategory{*sub}
	}
	return nil
}

func (g *transactionGenerator) randomTimestamp(startDate, endDate time.Time) time.Time {
	diff := endDate.Sub(startDate)
	if diff <= 0 {
		return startDate
	}
	at := startDate.Add(time.Duration(g.rng.Int63n(int64(diff))))

	hour := businessHoursStart + g.rng.Intn(businessHoursEnd-businessHoursStart)
	return time.Date(at.Year(), at.Month(), at.Day(), hour, g.rng.Intn(60), g.rng.Intn(60), 0, time.UTC)
}
