package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

// Register creates a staff account. Only admins reach this handler.
func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterStaffInput
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	user, err := ac.Auth.RegisterStaff(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, gin.H{"user": user})
}

func (ac *AuthController) RegisterCustomer(c *gin.Context) {
	var req services.RegisterCustomerInput
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := ac.Auth.RegisterCustomer(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, result)
}

type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login accepts {login}, {username} or {email} alongside the password.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	login := req.Login
	if login == "" {
		login = req.Username
	}
	if login == "" {
		login = req.Email
	}

	result, err := ac.Auth.Login(c.Request.Context(), services.LoginInput{Login: login, Password: req.Password})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, result)
}

func (ac *AuthController) Me(c *gin.Context) {
	identity, ok := middlewares.IdentityFrom(c)
	if !ok {
		utils.RespondError(c, domain.AuthenticationError("Access token required"))
		return
	}

	user, err := ac.Auth.Me(c.Request.Context(), identity.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, user)
}

func (ac *AuthController) ListUsers(c *gin.Context) {
	users, err := ac.Auth.ListUsers(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, users)
}
