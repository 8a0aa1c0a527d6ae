package handler

import (
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/restoflow/internal/middleware"
	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/utils"
)

const sessionUserKey = "userinfo"

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 员工登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "请填写邮箱和密码")
		return
	}

	user, err := h.Users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || !h.Users.CheckPassword(user, req.Password) {
		utils.Unauthorized(c, "邮箱或密码错误")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, user.Role, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		respondError(c, err)
		return
	}
	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)

	// Session 中保存用户信息
	session := sessions.Default(c)
	session.Set(sessionUserKey, model.SessionUser{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
	})
	if err := session.Save(); err != nil {
		slog.Warn("保存 session 失败", "error", err)
	}

	utils.Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout 退出登录
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)

	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()

	utils.Success(c, nil)
}

// Me 当前登录的员工
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)

	session := sessions.Default(c)
	if su, ok := session.Get(sessionUserKey).(model.SessionUser); ok && su.ID == userID {
		utils.Success(c, su)
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		utils.Unauthorized(c, "")
		return
	}

	utils.Success(c, model.SessionUser{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
	})
}

// CreateUserRequest 新建员工账号
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=2,max=32"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin cashier kitchen"`
}

// AdminCreateUser 管理员新建员工账号
func (h *Handler) AdminCreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}

	user, err := h.Users.Create(c.Request.Context(), req.Email, req.Username, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Created(c, user)
}

// AdminListUsers 员工账号列表
func (h *Handler) AdminListUsers(c *gin.Context) {
	users, err := h.Users.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []*model.User{}
	}
	utils.Success(c, users)
}
