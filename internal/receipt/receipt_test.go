package receipt

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizconsole/internal/model"
)

func sampleSale() model.Sale {
	items := []model.SaleItem{
		{ProductID: 1, ProductName: "4G Data Plan 10GB", Quantity: 2, UnitPrice: decimal.NewFromInt(25000)},
		{ProductID: 3, Quantity: 1, UnitPrice: decimal.NewFromInt(150000)},
	}
	return model.Sale{
		ID:            42,
		SellerName:    "seller1",
		Items:         items,
		PaymentMethod: model.PaymentMobileMoney,
		TotalAmount:   decimal.NewFromInt(200000),
		SaleDate:      time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestWrite_ProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleSale(), Options{Names: map[int64]string{3: "Business Bundle"}}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestSave_WritesNamedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	path, err := Save(sampleSale(), dir, Options{Business: "Telco Shop"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "receipt_42.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestItemName(t *testing.T) {
	assert.Equal(t, "Business Bundle", itemName(model.SaleItem{ProductID: 3}, map[int64]string{3: "Business Bundle"}))
	assert.Equal(t, "Product 9", itemName(model.SaleItem{ProductID: 9}, nil))
	long := itemName(model.SaleItem{ProductName: "Network Switch 8-Port Managed PoE"}, nil)
	assert.Len(t, []rune(long), maxName)
	assert.Equal(t, "...", long[len(long)-3:])
}
