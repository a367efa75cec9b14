package importer

import (
	"context"
	"errors"
	"testing"

	"decor-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
	nextID int64
}

func (m *MockWriter) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockWriter) CreateProduct(ctx context.Context, tx pgx.Tx, product *model.Product) error {
	args := m.Called(ctx, tx, product)
	if args.Error(0) == nil {
		m.nextID++
		product.ID = m.nextID
	}
	return args.Error(0)
}

func (m *MockWriter) CreateVariants(ctx context.Context, tx pgx.Tx, variants []model.ProductVariant) error {
	return m.Called(ctx, tx, variants).Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockTx) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

func staticLoader(records []Record, err error) Loader {
	return &mockLoader{loadFunc: func(ctx context.Context, path string) ([]Record, error) {
		return records, err
	}}
}

var sampleRecords = []Record{
	{CoverPhoto: "cdn.example.com/a.jpg", Name: "Ivory", Brand: "Nordwand", ProductID: "101", Stock: 5, VariantPhoto: "cdn.example.com/a1.jpg"},
	{CoverPhoto: "cdn.example.com/b.jpg", Name: "Test Slate", Brand: "Atelier", ProductID: "202", Stock: 7},
	{CoverPhoto: "cdn.example.com/a.jpg", Name: "Sage", Brand: "Nordwand", ProductID: "101", Stock: 3, VariantPhoto: "http://cdn.example.com/a2.jpg"},
}

func TestBuild(t *testing.T) {
	got := Build(sampleRecords)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Nordwand Series 101", first.Name)
	assert.Equal(t, model.ProductTypeWallpaper, first.Type)
	assert.Equal(t, "https://cdn.example.com/a.jpg", first.ImageURL)
	assert.Equal(t, 8, first.Stock)
	assert.True(t, first.Price.Equal(decimal.NewFromInt(450000)))
	assert.Equal(t, "#FFFFFF", first.ColorHex)
	assert.Equal(t, "living_room", first.RoomCategory)
	assert.True(t, first.IsNewArrival)
	assert.Contains(t, first.Description, "Nordwand")

	require.Len(t, first.Variants, 2)
	assert.Equal(t, "Ivory", first.Variants[0].Name)
	assert.Equal(t, 5, first.Variants[0].Stock)
	assert.Equal(t, "https://cdn.example.com/a1.jpg", *first.Variants[0].ImageURL)
	assert.Equal(t, "http://cdn.example.com/a2.jpg", *first.Variants[1].ImageURL)
	assert.Equal(t, "#FFFFFF", *first.Variants[1].ColorHex)

	second := got[1]
	assert.Equal(t, "Atelier Series 202_test", second.Name)
	require.Len(t, second.Variants, 1)
	assert.Equal(t, "Test Slate_test", second.Variants[0].Name)
	assert.Nil(t, second.Variants[0].ImageURL)
}

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil))
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	repo := &MockWriter{}
	tx := &MockTx{}

	repo.On("BeginTx", ctx).Return(tx, nil).Twice()
	repo.On("CreateProduct", ctx, tx, mock.AnythingOfType("*model.Product")).Return(nil).Twice()
	repo.On("CreateVariants", ctx, tx, mock.MatchedBy(func(vs []model.ProductVariant) bool {
		for _, v := range vs {
			if v.ProductID == 0 {
				return false
			}
		}
		return true
	})).Return(nil).Twice()
	tx.On("Commit", ctx).Return(nil).Twice()

	imp := New(staticLoader(sampleRecords, nil), repo, zerolog.Nop())
	res, err := imp.Import(ctx, "skus.csv")

	require.NoError(t, err)
	assert.Equal(t, Result{Records: 3, Products: 2, Variants: 3}, res)
	repo.AssertExpectations(t)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestImporter_Import_VariantFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := &MockWriter{}
	tx := &MockTx{}

	repo.On("BeginTx", ctx).Return(tx, nil).Once()
	repo.On("CreateProduct", ctx, tx, mock.Anything).Return(nil).Once()
	repo.On("CreateVariants", ctx, tx, mock.Anything).Return(errors.New("duplicate key")).Once()
	tx.On("Rollback", ctx).Return(nil).Once()

	imp := New(staticLoader(sampleRecords, nil), repo, zerolog.Nop())
	res, err := imp.Import(ctx, "skus.csv")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `import product "Nordwand Series 101"`)
	assert.Equal(t, Result{Records: 3}, res)
	repo.AssertExpectations(t)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestImporter_Import_StopsAfterFirstFailure(t *testing.T) {
	ctx := context.Background()
	repo := &MockWriter{}
	tx := &MockTx{}

	repo.On("BeginTx", ctx).Return(tx, nil).Once()
	repo.On("BeginTx", ctx).Return(nil, errors.New("pool closed")).Once()
	repo.On("CreateProduct", ctx, tx, mock.Anything).Return(nil).Once()
	repo.On("CreateVariants", ctx, tx, mock.Anything).Return(nil).Once()
	tx.On("Commit", ctx).Return(nil).Once()

	imp := New(staticLoader(sampleRecords, nil), repo, zerolog.Nop())
	res, err := imp.Import(ctx, "skus.csv")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool closed")
	assert.Equal(t, Result{Records: 3, Products: 1, Variants: 2}, res)
	repo.AssertExpectations(t)
}

func TestImporter_Import_LoadError(t *testing.T) {
	repo := &MockWriter{}
	imp := New(staticLoader(nil, errors.New("no such file")), repo, zerolog.Nop())

	_, err := imp.Import(context.Background(), "skus.csv")

	assert.EqualError(t, err, "no such file")
	repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}
