package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionNumberSeries hands out sequential document numbers per module
// (SALE, PURCHASE). Allocation happens inside the posting transaction under a
// row lock so two postings can't take the same number.
type TransactionNumberSeries struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Module     string    `gorm:"uniqueIndex;size:20;not null" json:"module"`
	Prefix     string    `gorm:"size:10;not null" json:"prefix"`
	NextNumber int       `gorm:"not null;default:1" json:"next_number"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// seedTransactionNumberSeries creates the known series rows so first-ever
// postings lock an existing row instead of racing to insert it.
func seedTransactionNumberSeries(db *gorm.DB) error {
	for _, series := range []TransactionNumberSeries{
		{Module: "SALE", Prefix: "INV", NextNumber: 1},
		{Module: "PURCHASE", Prefix: "PO", NextNumber: 1},
	} {
		row := series
		if err := db.Where(TransactionNumberSeries{Module: row.Module}).
			Attrs(TransactionNumberSeries{Prefix: row.Prefix, NextNumber: row.NextNumber}).
			FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func nextTransactionNumber(tx *gorm.DB, module string, defaultPrefix string) (string, error) {
	var series TransactionNumberSeries
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("module = ?", module).First(&series).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		series = TransactionNumberSeries{Module: module, Prefix: defaultPrefix, NextNumber: 1}
		if createErr := tx.Create(&series).Error; createErr != nil {
			// Lost the first-ever race on the unique module index; take the
			// winner's row under the lock instead.
			series = TransactionNumberSeries{}
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("module = ?", module).First(&series).Error; err != nil {
				return "", createErr
			}
		}
	} else if err != nil {
		return "", err
	}

	number := fmt.Sprintf("%s-%05d", series.Prefix, series.NextNumber)
	if err := tx.Model(&series).Update("next_number", series.NextNumber+1).Error; err != nil {
		return "", err
	}
	return number, nil
}
