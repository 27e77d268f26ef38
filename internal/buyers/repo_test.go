package buyers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
	dbtypes "github.com/leadfolio/leadfolio-backend/pkg/db/types"
	"github.com/leadfolio/leadfolio-backend/pkg/enums"
)

func setupBuyersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	buyersTable := `
CREATE TABLE IF NOT EXISTS buyers (
  id TEXT PRIMARY KEY,
  full_name TEXT NOT NULL,
  email TEXT,
  phone TEXT NOT NULL,
  city TEXT NOT NULL,
  property_type TEXT NOT NULL,
  bhk TEXT,
  purpose TEXT NOT NULL,
  budget_min TEXT,
  budget_max TEXT,
  timeline TEXT,
  source TEXT,
  notes TEXT,
  tags TEXT,
  status TEXT NOT NULL DEFAULT 'New',
  owner_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	histories := `
CREATE TABLE IF NOT EXISTS buyer_histories (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  changed_by_id TEXT NOT NULL,
  changed_at DATETIME,
  diff TEXT NOT NULL
);`
	require.NoError(t, db.Exec(buyersTable).Error)
	require.NoError(t, db.Exec(histories).Error)
	return db
}

func seedBuyer(t *testing.T, repo *Repository, mutate func(*models.Buyer)) *models.Buyer {
	t.Helper()
	buyer := baseBuyer(t)
	buyer.OwnerID = "did:magic:owner"
	if mutate != nil {
		mutate(buyer)
	}
	created, err := repo.CreateWithHistory(context.Background(), buyer, CreationDiff(buyer), buyer.OwnerID)
	require.NoError(t, err)
	return created
}

func TestRepoCreateWithHistoryWritesBoth(t *testing.T) {
	db := setupBuyersTestDB(t)
	repo := NewRepository(db)

	created := seedBuyer(t, repo, nil)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Sharma", found.FullName)
	assert.Equal(t, []string{"hot"}, []string(found.Tags))
	require.NotNil(t, found.BudgetMin)
	assert.True(t, found.BudgetMin.Equal(mustDecimal(t, "500000")))

	history, err := repo.ListHistory(context.Background(), created.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Created", history[0].Diff["action"])
}

func TestRepoUpdateWithHistoryAdvancesToken(t *testing.T) {
	db := setupBuyersTestDB(t)
	repo := NewRepository(db)
	created := seedBuyer(t, repo, nil)
	before := created.UpdatedAt

	time.Sleep(1100 * time.Millisecond)

	created.FullName = "Ravi S."
	diff := dbtypes.JSONMap{"fullName": map[string]any{"old": "Ravi Sharma", "new": "Ravi S."}}
	updated, err := repo.UpdateWithHistory(context.Background(), created, diff, "did:magic:owner")
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(before), "updated_at should advance")

	history, err := repo.ListHistory(context.Background(), created.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestRepoListFiltersAndSearch(t *testing.T) {
	db := setupBuyersTestDB(t)
	repo := NewRepository(db)

	seedBuyer(t, repo, nil)
	seedBuyer(t, repo, func(b *models.Buyer) {
		b.FullName = "Meena Kaur"
		b.Phone = "9876501234"
		b.City = enums.CityMohali
		b.PropertyType = enums.PropertyTypePlot
		b.BHK = nil
		b.Status = enums.BuyerStatusQualified
	})

	rows, total, err := repo.List(context.Background(), Filters{City: "Mohali"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Meena Kaur", rows[0].FullName)

	rows, total, err = repo.List(context.Background(), Filters{Search: "meena"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)

	rows, total, err = repo.List(context.Background(), Filters{Search: "98765"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.List(context.Background(), Filters{Status: "Qualified", City: "Chandigarh"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, rows)
}

func TestRepoSearchTreatsWildcardsLiterally(t *testing.T) {
	db := setupBuyersTestDB(t)
	repo := NewRepository(db)

	seedBuyer(t, repo, nil)
	seedBuyer(t, repo, func(b *models.Buyer) {
		b.FullName = "100% Genuine Realty"
		b.Phone = "9876501234"
	})

	rows, total, err := repo.List(context.Background(), Filters{Search: "100%"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "100% Genuine Realty", rows[0].FullName)

	// An underscore is a literal character, not a single-char wildcard.
	_, total, err = repo.List(context.Background(), Filters{Search: "r_vi"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestRepoListOrdersByUpdatedAtDesc(t *testing.T) {
	db := setupBuyersTestDB(t)
	repo := NewRepository(db)

	first := seedBuyer(t, repo, nil)
	time.Sleep(1100 * time.Millisecond)
	seedBuyer(t, repo, func(b *models.Buyer) { b.FullName = "Meena Kaur" })

	rows, _, err := repo.List(context.Background(), Filters{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Meena Kaur", rows[0].FullName)
	assert.Equal(t, first.ID, rows[1].ID)
}

func TestRepoDeleteKeepsHistory(t *testing.T) {
	db := setupBuyersTestDB(t)
	repo := NewRepository(db)
	created := seedBuyer(t, repo, nil)

	require.NoError(t, repo.Delete(context.Background(), created.ID))

	_, err := repo.FindByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	history, err := repo.ListHistory(context.Background(), created.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRepoInsertBatchRollsBackOnFailure(t *testing.T) {
	db := setupBuyersTestDB(t)
	repo := NewRepository(db)

	good := baseBuyer(t)
	good.OwnerID = "did:magic:owner"
	dup := baseBuyer(t)
	dup.OwnerID = "did:magic:owner"
	dup.ID = uuid.New()
	bad := baseBuyer(t)
	bad.OwnerID = "did:magic:owner"
	bad.ID = dup.ID // primary key collision forces the batch to fail

	err := repo.InsertBatch(context.Background(), []*models.Buyer{good, dup, bad})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Buyer{}).Count(&count).Error)
	assert.EqualValues(t, 0, count, "failed batch must not leave partial rows")
}

func TestRepoUpdateStatusWritesColumn(t *testing.T) {
	db := setupBuyersTestDB(t)
	repo := NewRepository(db)
	created := seedBuyer(t, repo, nil)

	require.NoError(t, repo.UpdateStatus(context.Background(), created.ID, enums.BuyerStatusConverted))

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BuyerStatusConverted, found.Status)

	history, err := repo.ListHistory(context.Background(), created.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1, "status change writes no history")
}
