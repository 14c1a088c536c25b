package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/utils"
)

type Branch struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"size:20" json:"phone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBranch struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewBranch) validate(ctx context.Context, id int) error {
	return utils.ValidateUnique[Branch](ctx, "name", input.Name, id)
}

func CreateBranch(ctx context.Context, input *NewBranch) (*Branch, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	branch := Branch{
		Name:     input.Name,
		Address:  input.Address,
		Phone:    input.Phone,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func UpdateBranch(ctx context.Context, id int, input *NewBranch) (*Branch, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	branch, err := utils.FetchModel[Branch](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(branch).Updates(map[string]interface{}{
		"Name":    input.Name,
		"Address": input.Address,
		"Phone":   input.Phone,
	}).Error
	if err != nil {
		return nil, err
	}
	return branch, nil
}

func DeleteBranch(ctx context.Context, id int) (*Branch, error) {

	branch, err := utils.FetchModel[Branch](ctx, id)
	if err != nil {
		return nil, err
	}

	// don't delete a branch that users still belong to
	count, err := utils.ResourceCountWhere[User](ctx, "branch_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errorInUse("branch", "user")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(branch).Error; err != nil {
		return nil, err
	}
	return branch, nil
}

func GetBranch(ctx context.Context, id int) (*Branch, error) {
	return utils.FetchModel[Branch](ctx, id)
}

func GetBranches(ctx context.Context, name *string) ([]*Branch, error) {

	db := config.GetDB()
	var results []*Branch

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
