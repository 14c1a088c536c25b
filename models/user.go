package models

import (
	"context"
	"errors"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/utils"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('Admin','Manager','Accountant','Cashier','Warehouse Staff');default:'Cashier'" json:"role"`
	BranchId  int       `gorm:"index;not null;default:0" json:"branch_id"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" binding:"required,min=6"`
	Role     UserRole `json:"role" binding:"required"`
	BranchId int      `json:"branch_id"`
	IsActive *bool    `json:"is_active"`
}

type UpdateUserInput struct {
	Name     *string   `json:"name"`
	Email    *string   `json:"email"`
	Phone    *string   `json:"phone"`
	Password *string   `json:"password"`
	Role     *UserRole `json:"role"`
	BranchId *int      `json:"branch_id"`
	IsActive *bool     `json:"is_active"`
}

type LoginInfo struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	BranchId int    `json:"branch_id"`
}

func (user *User) PrepareGive() {
	user.Password = ""
}

func tokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// Login checks credentials and issues a JWT. The token is also stored in
// redis (Token:<token> -> username) so logout can revoke it server-side
// before its expiry.
func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {

	db := config.GetDB()
	var user User

	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error
	if err != nil {
		return nil, errors.New("invalid username or password")
	}

	err = utils.ComparePassword(user.Password, password)
	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return nil, errors.New("invalid username or password")
	}

	if user.IsActive != nil && !*user.IsActive {
		return nil, errors.New("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, user.Username, string(user.Role), user.BranchId)
	if err != nil {
		return nil, err
	}

	if err := config.AddRedisSet("Tokens:"+user.Username, token); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token, user.Username, tokenLifespan()); err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token:    token,
		Name:     user.Name,
		Role:     string(user.Role),
		BranchId: user.BranchId,
	}, nil
}

// Logout destroys the current session token.
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errorValidation("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, err
	}
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, errorValidation("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, token); err != nil {
		return false, err
	}
	return true, nil
}

// revokeUserSessions drops every live token of the user. Used when a user is
// disabled or deleted.
func revokeUserSessions(username string) error {
	tokens, err := config.GetRedisSetMembers("Tokens:" + username)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if err := config.RemoveRedisKey("Token:" + token); err != nil {
			return err
		}
	}
	return config.RemoveRedisKey("Tokens:" + username)
}

func (input *NewUser) validate(ctx context.Context) error {
	if !ValidUserRole(input.Role) {
		return errorValidation("invalid role")
	}
	if input.BranchId > 0 {
		if err := utils.ValidateResourceId[Branch](ctx, input.BranchId); err != nil {
			return errorNotFound("branch")
		}
	}
	return utils.ValidateUnique[User](ctx, "username", input.Username, 0)
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}

	user := User{
		Username: html.EscapeString(strings.TrimSpace(input.Username)),
		Name:     input.Name,
		Email:    strings.ToLower(input.Email),
		Phone:    input.Phone,
		Password: string(hashedPassword),
		Role:     input.Role,
		BranchId: input.BranchId,
		IsActive: isActive,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

func UpdateUser(ctx context.Context, id int, input *UpdateUserInput) (*User, error) {

	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["Name"] = *input.Name
	}
	if input.Email != nil {
		updates["Email"] = strings.ToLower(*input.Email)
	}
	if input.Phone != nil {
		updates["Phone"] = *input.Phone
	}
	if input.Password != nil && *input.Password != "" {
		hashedPassword, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		updates["Password"] = string(hashedPassword)
	}
	if input.Role != nil {
		if !ValidUserRole(*input.Role) {
			return nil, errorValidation("invalid role")
		}
		updates["Role"] = *input.Role
	}
	if input.BranchId != nil {
		if *input.BranchId > 0 {
			if err := utils.ValidateResourceId[Branch](ctx, *input.BranchId); err != nil {
				return nil, errorNotFound("branch")
			}
		}
		updates["BranchId"] = *input.BranchId
	}
	if input.IsActive != nil {
		updates["IsActive"] = *input.IsActive
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	if input.IsActive != nil && !*input.IsActive {
		if err := revokeUserSessions(user.Username); err != nil {
			logger := config.GetLogger()
			config.LogError(logger, "user.go", "UpdateUser", "revokeUserSessions", user.Username, err)
		}
	}

	return GetUser(ctx, id)
}

func DeleteUser(ctx context.Context, id int) (*User, error) {

	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	var count int64
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(&Sale{}).Where("user_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errorInUse("user", "sales")
	}

	if err := db.WithContext(ctx).Delete(&User{}, id).Error; err != nil {
		return nil, err
	}
	if err := revokeUserSessions(user.Username); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "user.go", "DeleteUser", "revokeUserSessions", user.Username, err)
	}
	user.PrepareGive()
	return user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}
	user.PrepareGive()
	return user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}

func GetAllUsers(ctx context.Context) ([]*User, error) {

	db := config.GetDB()
	var results []*User

	if err := db.WithContext(ctx).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	for _, u := range results {
		u.PrepareGive()
	}
	return results, nil
}

// SeedAdminUser bootstraps the default admin and branch on a fresh database.
// Safe to run repeatedly.
func SeedAdminUser(ctx context.Context, username string, password string) (*User, error) {

	db := config.GetDB()

	var branchCount int64
	if err := db.WithContext(ctx).Model(&Branch{}).Count(&branchCount).Error; err != nil {
		return nil, err
	}
	branchId := 0
	if branchCount == 0 {
		branch := Branch{Name: "Main Branch", IsActive: utils.NewTrue()}
		if err := db.WithContext(ctx).Create(&branch).Error; err != nil {
			return nil, err
		}
		branchId = branch.ID
	}

	existing, err := GetUserByUsername(ctx, username)
	if err == nil {
		existing.PrepareGive()
		return existing, nil
	}

	return CreateUser(ctx, &NewUser{
		Username: username,
		Name:     "Administrator",
		Password: password,
		Role:     UserRoleAdmin,
		BranchId: branchId,
		IsActive: utils.NewTrue(),
	})
}
