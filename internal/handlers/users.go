package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// UserHandler handles staff account management (admin operations).
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// DoctorProfileRequest is the nested dentist profile on staff create/update.
type DoctorProfileRequest struct {
	Specialization string  `json:"specialization"`
	LicenseNumber  string  `json:"licenseNumber" binding:"required"`
	RevenueShare   float64 `json:"revenueShare" binding:"gte=0,lte=100"`
}

// CreateUserRequest represents the request body for creating a staff member.
// Dentists must carry a doctor profile; other roles must not.
type CreateUserRequest struct {
	FirstName     string                `json:"firstName" binding:"required"`
	LastName      string                `json:"lastName" binding:"required"`
	Email         string                `json:"email" binding:"required,email"`
	Password      string                `json:"password" binding:"required,min=8"`
	Role          string                `json:"role" binding:"required,oneof=admin dentist receptionist assistant manager"`
	Phone         string                `json:"phone"`
	Gender        string                `json:"gender" binding:"omitempty,oneof=male female"`
	BirthDate     string                `json:"birthDate"`
	Address       string                `json:"address"`
	DoctorProfile *DoctorProfileRequest `json:"doctorProfile"`
}

// CreateUser handles creating a new staff member (admin).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	role := models.Role(req.Role)
	if role == models.RoleDentist && req.DoctorProfile == nil {
		utils.FieldError(c, "doctorProfile", "a doctor profile is required for dentists")
		return
	}
	if role != models.RoleDentist && req.DoctorProfile != nil {
		utils.FieldError(c, "doctorProfile", "only dentists carry a doctor profile")
		return
	}
	if req.Phone != "" && !utils.IsValidPhone(req.Phone) {
		utils.FieldError(c, "phone", "phone must contain 7 to 15 digits")
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "A staff member with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      role,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Address:   req.Address,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			utils.FieldError(c, "birthDate", "birth date must be in YYYY-MM-DD format")
			return
		}
		user.BirthDate = &birthDate
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if req.DoctorProfile == nil {
			return nil
		}
		profile := models.Doctor{
			UserID:         user.ID,
			Specialization: req.DoctorProfile.Specialization,
			LicenseNumber:  req.DoctorProfile.LicenseNumber,
			RevenueShare:   req.DoctorProfile.RevenueShare,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.DoctorProfile = &profile
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create staff member: "+err.Error())
		return
	}

	utils.Created(c, "Staff member created successfully", user.Sanitize())
}

// GetUsers handles fetching all staff members (admin). Archived accounts
// are hidden unless ?archived=true.
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := h.DB.Preload("DoctorProfile")
	if c.Query("archived") != "true" {
		query = query.Where("is_archived = ?", false)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch staff: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Staff fetched successfully", sanitized)
}

// GetUserByID handles fetching a single staff member by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.Preload("DoctorProfile").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Staff member not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Staff member fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a staff member.
type UpdateUserRequest struct {
	FirstName     string                `json:"firstName"`
	LastName      string                `json:"lastName"`
	Email         string                `json:"email"`
	Role          string                `json:"role" binding:"omitempty,oneof=admin dentist receptionist assistant manager"`
	Phone         string                `json:"phone"`
	Gender        string                `json:"gender" binding:"omitempty,oneof=male female"`
	Address       string                `json:"address"`
	DoctorProfile *DoctorProfileRequest `json:"doctorProfile"`
}

// UpdateUser handles updating a staff member by ID (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.Preload("DoctorProfile").First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "Staff member not found")
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		if !utils.IsValidPhone(req.Phone) {
			utils.FieldError(c, "phone", "phone must contain 7 to 15 digits")
			return
		}
		user.Phone = req.Phone
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.Email != "" && req.Email != user.Email {
		var existingUser models.User
		if err := h.DB.Where("email = ? AND id != ?", req.Email, user.ID).First(&existingUser).Error; err == nil {
			utils.BadRequest(c, "New email is already in use")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Database error checking email: "+err.Error())
			return
		}
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = models.Role(req.Role)
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		if req.DoctorProfile == nil {
			return nil
		}
		if user.Role != models.RoleDentist {
			return errors.New("only dentists carry a doctor profile")
		}
		if user.DoctorProfile != nil {
			user.DoctorProfile.Specialization = req.DoctorProfile.Specialization
			user.DoctorProfile.LicenseNumber = req.DoctorProfile.LicenseNumber
			user.DoctorProfile.RevenueShare = req.DoctorProfile.RevenueShare
			return tx.Save(user.DoctorProfile).Error
		}
		profile := models.Doctor{
			UserID:         user.ID,
			Specialization: req.DoctorProfile.Specialization,
			LicenseNumber:  req.DoctorProfile.LicenseNumber,
			RevenueShare:   req.DoctorProfile.RevenueShare,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.DoctorProfile = &profile
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to update staff member: "+err.Error())
		return
	}

	utils.Success(c, "Staff member updated successfully", user.Sanitize())
}

// DeleteUser archives a staff member by ID (admin). Accounts are never hard
// deleted; appointments and exams keep pointing at the archived record.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Staff member not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Model(&user).Update("is_archived", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to archive staff member: "+err.Error())
		return
	}

	utils.Success(c, "Staff member archived successfully", nil)
}

// GetDoctors handles fetching all dentists with their profiles, for the
// booking form.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	var doctors []models.Doctor
	err := h.DB.
		Joins("JOIN users ON users.id = doctors.user_id").
		Where("users.is_archived = ?", false).
		Preload("User").
		Find(&doctors).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	type doctorView struct {
		ID             string  `json:"id"`
		Name           string  `json:"name"`
		Specialization string  `json:"specialization,omitempty"`
		LicenseNumber  string  `json:"licenseNumber"`
		RevenueShare   float64 `json:"revenueShare"`
	}
	views := make([]doctorView, len(doctors))
	for i, d := range doctors {
		views[i] = doctorView{
			ID:             d.ID,
			Name:           d.User.FullName(),
			Specialization: d.Specialization,
			LicenseNumber:  d.LicenseNumber,
			RevenueShare:   d.RevenueShare,
		}
	}

	utils.Success(c, "Doctors fetched successfully", views)
}
