package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/Jiffye-m/chatapp/internal/middleware"
	"github.com/Jiffye-m/chatapp/internal/models"
	"github.com/Jiffye-m/chatapp/internal/upload"
	"github.com/Jiffye-m/chatapp/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves signup/login/logout/profile/check-auth.
type AuthHandler struct {
	DB           *gorm.DB
	JWTSecret    string
	TokenTTL     time.Duration
	BcryptCost   int
	SecureCookie bool
	Uploader     upload.Uploader
	Logger       *zap.Logger
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours, bcryptCost int, secureCookie bool, up upload.Uploader, logger *zap.Logger) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 7 * 24
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		DB:           db,
		JWTSecret:    jwtSecret,
		TokenTTL:     time.Duration(ttlHours) * time.Hour,
		BcryptCost:   bcryptCost,
		SecureCookie: secureCookie,
		Uploader:     up,
		Logger:       logger,
	}
}

// setAuthCookie issues the session token as an HTTP-only, SameSite=Strict
// cookie, invisible to frontend script.
func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.CookieName, token, int(h.TokenTTL.Seconds()), "/", "", h.SecureCookie, true)
}

func (h *AuthHandler) clearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", h.SecureCookie, true)
}

// ---------- signup ----------

type signupReq struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "All fields are required")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if req.Email == "" || req.FullName == "" || req.Password == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "All fields are required")
		return
	}
	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid email address")
		return
	}
	if err := util.ValidateFullName(req.FullName); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid full name")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Password must be at least 6 characters long")
		return
	}

	// email uniqueness, case-insensitive
	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(email) = ?", req.Email).
		Count(&count).Error; err != nil {
		h.Logger.Error("signup: count users", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "User already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		h.Logger.Error("signup: hash password", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return
	}

	user := models.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		h.Logger.Error("signup: create user", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		h.Logger.Error("signup: generate token", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return
	}
	h.setAuthCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user.Public(),
	})
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Invalid credentials")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	if err := h.DB.Where("LOWER(email) = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// same message as a wrong password, no user enumeration
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Invalid credentials")
		} else {
			h.Logger.Error("login: query user", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Invalid credentials")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		h.Logger.Error("login: generate token", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return
	}
	h.setAuthCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user.Public(),
	})
}

// ---------- logout ----------

func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// ---------- profile ----------

type updateProfileReq struct {
	ProfilePic string `json:"profilePic"`
}

// UpdateProfile uploads the submitted data-URI image and stores its URL.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ProfilePic == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Profile picture is required")
		return
	}

	url, err := h.Uploader.Upload(c.Request.Context(), req.ProfilePic)
	if err != nil {
		h.Logger.Error("update profile: upload", zap.Uint("user_id", user.ID), zap.Error(err))
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid profile picture")
		return
	}

	if err := h.DB.Model(user).Update("profile_pic", url).Error; err != nil {
		h.Logger.Error("update profile: save", zap.Uint("user_id", user.ID), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal Server Error")
		return
	}
	user.ProfilePic = url

	c.JSON(http.StatusOK, gin.H{
		"message":    "Profile updated successfully",
		"profilePic": url,
		"user":       user.Public(),
	})
}

// ---------- check-auth ----------

func (h *AuthHandler) CheckAuth(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, user.Public())
}
