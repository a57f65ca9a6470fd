package userControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/fashionshop-api/middleware"
	"github.com/junaidrashid-git/fashionshop-api/models"
	"gorm.io/gorm"
)

type UpdateUserInput struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// GET /user
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.WithContext(c.Request.Context()).Where("email = ?", middleware.Email(c)).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /admin/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.WithContext(c.Request.Context()).Order("created_at desc").Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// PUT /user saves the profile used to prefill checkout. The first call
// creates the account row for the token's id and email.
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		ctx := c.Request.Context()
		email := middleware.Email(c)
		var user models.User
		isNew := false
		err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{ID: middleware.UserID(c), Email: email}
			isNew = true
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
			return
		}

		if input.FullName != nil {
			user.FullName = strings.TrimSpace(*input.FullName)
		}
		if input.Phone != nil {
			user.Phone = strings.TrimSpace(*input.Phone)
		}
		if input.Address != nil {
			user.Address = strings.TrimSpace(*input.Address)
		}

		save := db.WithContext(ctx).Save
		if isNew {
			save = db.WithContext(ctx).Create
		}
		if err := save(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
