package repositories

import (
	"testing"

	"centsible/internal/database"
	"centsible/internal/models"

	"github.com/stretchr/testify/suite"
)

// CategoryRepositorySuite defines the test suite for CategoryRepository
type CategoryRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo CategoryRepositoryInterface
}

func (s *CategoryRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewCategoryRepository(s.db.DB)
}

func (s *CategoryRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestCategoryRepositorySuite(t *testing.T) {
	suite.Run(t, new(CategoryRepositorySuite))
}

func (s *CategoryRepositorySuite) TestGetAllPreloadsSubCategories() {
	database.CreateTestCategory(s.T(), s.db, "Food And Drink", "Groceries", "Restaurant")
	database.CreateTestCategory(s.T(), s.db, "Entertainment", "Music And Audio")

	categories, err := s.repo.GetAll()
	s.Require().NoError(err)
	s.Require().Len(categories, 2)

	s.Equal("Entertainment", categories[0].Name)
	s.Require().Len(categories[0].SubCategories, 1)
	s.Equal("Music And Audio", categories[0].SubCategories[0].Name)

	s.Equal("Food And Drink", categories[1].Name)
	s.Len(categories[1].SubCategories, 2)
}

func (s *CategoryRepositorySuite) TestGetByIDPreloadsSubCategories() {
	created := database.CreateTestCategory(s.T(), s.db, "Transportation", "Gas", "Parking")

	category, err := s.repo.GetByID(created.ID)
	s.Require().NoError(err)
	s.Equal("Transportation", category.Name)

	names := make([]string, 0, len(category.SubCategories))
	for _, sub := range category.SubCategories {
		names = append(names, sub.Name)
	}
	s.ElementsMatch([]string{"Gas", "Parking"}, names)
}

func (s *CategoryRepositorySuite) TestGetByIDNotFound() {
	_, err := s.repo.GetByID(9999)
	s.ErrorIs(err, ErrCategoryNotFound)
}

func (s *CategoryRepositorySuite) TestActiveSubCategoryIndexSkipsInactive() {
	category := database.CreateTestCategory(s.T(), s.db, "Food And Drink", "Groceries")
	inactive := &models.SubCategory{Name: "Retired Label", CategoryID: category.ID, IsActive: false}
	s.Require().NoError(s.db.Create(inactive).Error)

	index, err := s.repo.ActiveSubCategoryIndex()
	s.Require().NoError(err)
	s.Contains(index, "Groceries")
	s.NotContains(index, "Retired Label")
}
