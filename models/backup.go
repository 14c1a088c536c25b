package models

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/retail_backend/config"
)

type BackupInfo struct {
	FileName  string    `json:"file_name"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

func backupDir() string {
	dir := os.Getenv("BACKUP_DIR")
	if dir == "" {
		dir = "backups"
	}
	return dir
}

// RunBackup dumps every table to a single JSON file under BACKUP_DIR and
// returns its metadata. The dump is synchronous; callers should treat it as a
// slow endpoint.
func RunBackup(ctx context.Context) (*BackupInfo, error) {

	db := config.GetDB()
	dump := map[string]interface{}{
		"created_at": time.Now().UTC(),
	}

	collect := func(name string, dest interface{}) error {
		if err := db.WithContext(ctx).Find(dest).Error; err != nil {
			return fmt.Errorf("dump %s: %w", name, err)
		}
		dump[name] = dest
		return nil
	}

	var (
		users      []User
		branches   []Branch
		categories []ProductCategory
		vendors    []Vendor
		customers  []Customer
		products   []Product
		movements  []StockMovement
		sales      []Sale
		saleLines  []SaleDetail
		purchases  []Purchase
		poLines    []PurchaseDetail
		ledgers    []LedgerEntry
		series     []TransactionNumberSeries
	)
	steps := []struct {
		name string
		dest interface{}
	}{
		{"users", &users},
		{"branches", &branches},
		{"product_categories", &categories},
		{"vendors", &vendors},
		{"customers", &customers},
		{"products", &products},
		{"stock_movements", &movements},
		{"sales", &sales},
		{"sale_details", &saleLines},
		{"purchases", &purchases},
		{"purchase_details", &poLines},
		{"ledger_entries", &ledgers},
		{"transaction_number_series", &series},
	}
	for _, step := range steps {
		if err := collect(step.name, step.dest); err != nil {
			return nil, err
		}
	}
	for i := range users {
		users[i].Password = ""
	}

	dir := backupDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fileName := fmt.Sprintf("backup-%s-%s.json",
		time.Now().UTC().Format("20060102-150405"), uuid.New().String()[:8])
	path := filepath.Join(dir, fileName)

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(dump); err != nil {
		os.Remove(path)
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	return &BackupInfo{
		FileName:  fileName,
		SizeBytes: stat.Size(),
		CreatedAt: stat.ModTime(),
	}, nil
}

func ListBackups(ctx context.Context) ([]*BackupInfo, error) {

	entries, err := os.ReadDir(backupDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []*BackupInfo{}, nil
		}
		return nil, err
	}

	results := make([]*BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		results = append(results, &BackupInfo{
			FileName:  entry.Name(),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	return results, nil
}
