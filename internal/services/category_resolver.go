package services

import (
	"fmt"
	"log/slog"
	"strings"

	"centsible/internal/dto"
	"centsible/internal/models"
	"centsible/internal/repositories"
)

// CategoryResolverInterface maps provider category labels to stored
// subcategories.
type CategoryResolverInterface interface {
	Resolve(pfc *dto.PersonalFinanceCategory) (*models.SubCategory, bool, error)
	ResolveName(name string) (*models.SubCategory, bool, error)
	Refresh() error
	ActiveNames() ([]string, error)
}

// categoryResolver caches the active subcategory index and normalizes
// provider labels against it. The cache is rebuilt on Refresh and whenever
// the index is empty; the taxonomy changes rarely enough that a per-batch
// refresh by callers is sufficient.
type categoryResolver struct {
	categoryRepo repositories.CategoryRepositoryInterface
	logger       *slog.Logger

	index map[string]models.SubCategory
}

// NewCategoryResolver creates a category resolver
func NewCategoryResolver(categoryRepo repositories.CategoryRepositoryInterface, logger *slog.Logger) CategoryResolverInterface {
	return &categoryResolver{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// Refresh rebuilds the in-memory subcategory index from the database.
// Keys are lowercased so sanitized provider labels and stored names meet
// regardless of casing.
func (r *categoryResolver) Refresh() error {
	index, err := r.categoryRepo.ActiveSubCategoryIndex()
	if err != nil {
		return fmt.Errorf("failed to refresh subcategory index: %w", err)
	}

	lowered := make(map[string]models.SubCategory, len(index))
	for name, sub := range index {
		lowered[strings.ToLower(name)] = sub
	}
	r.index = lowered
	return nil
}

// ActiveNames returns the active subcategory names for prompt building
func (r *categoryResolver) ActiveNames() ([]string, error) {
	return r.categoryRepo.ActiveSubCategoryNames()
}

// Resolve maps a provider category to a stored subcategory. The detailed
// label is sanitized before lookup. ok is false when the label has no
// active match; unmatched labels leave the transaction untagged rather
// than failing ingestion.
func (r *categoryResolver) Resolve(pfc *dto.PersonalFinanceCategory) (*models.SubCategory, bool, error) {
	if pfc == nil || pfc.Detailed == "" {
		return nil, false, nil
	}

	return r.ResolveName(SanitizeSubCategory(pfc.Detailed))
}

// ResolveName looks a subcategory up by its stored name, case-insensitively
func (r *categoryResolver) ResolveName(name string) (*models.SubCategory, bool, error) {
	if name == "" {
		return nil, false, nil
	}

	if r.index == nil {
		if err := r.Refresh(); err != nil {
			return nil, false, err
		}
	}

	sub, ok := r.index[strings.ToLower(name)]
	if !ok {
		r.logger.Debug("no active subcategory for label", "label", name)
		return nil, false, nil
	}
	return &sub, true, nil
}

// multiWordPrimaries are the primary labels whose names span several
// underscore-separated words, so a detailed label cannot be split on the
// first underscore alone.
var multiWordPrimaries = []string{
	"BANK_FEES",
	"FOOD_AND_DRINK",
	"GENERAL_MERCHANDISE",
	"GENERAL_SERVICES",
	"GOVERNMENT_AND_NON_PROFIT",
	"HOME_IMPROVEMENT",
	"LOAN_PAYMENTS",
	"PERSONAL_CARE",
	"RENT_AND_UTILITIES",
	"TRANSFER_IN",
	"TRANSFER_OUT",
}

// SanitizeSubCategory turns a provider detailed label into readable text.
// The detailed label repeats its primary label as a prefix
// ("FOOD_AND_DRINK_GROCERIES" under "FOOD_AND_DRINK"); a known multi-word
// prefix is stripped whole, any other label drops its first underscore
// token, and the remainder becomes lowercase space-joined words.
func SanitizeSubCategory(detailed string) string {
	for _, primary := range multiWordPrimaries {
		if strings.HasPrefix(detailed, primary) {
			rest := strings.TrimPrefix(strings.TrimPrefix(detailed, primary), "_")
			if rest == "" {
				// A detailed label equal to its primary keeps the full label
				rest = detailed
			}
			return strings.ToLower(strings.ReplaceAll(rest, "_", " "))
		}
	}

	parts := strings.Split(detailed, "_")
	return strings.ToLower(strings.Join(parts[1:], " "))
}
