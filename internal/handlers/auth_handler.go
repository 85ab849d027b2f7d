package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"codocs/internal/models"
	"codocs/internal/repositories"
	"codocs/internal/utils"
)

// AuthHandler manages authentication endpoints.
type AuthHandler struct {
	Repo      UserRepository
	JWTSecret string
	Log       *zap.Logger
}

func NewAuthHandler(repo UserRepository, secret string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Repo: repo, JWTSecret: secret, Log: log}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	First    string `json:"first"`
	Last     string `json:"last"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email    string `json:"email"`
	Last     string `json:"last"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Email == "" || req.Password == "" || req.First == "" || req.Last == "" {
		utils.JSONError(w, http.StatusBadRequest, "missing fields")
		return
	}
	if !utils.IsPasswordValid(req.Password) {
		utils.JSONError(w, http.StatusBadRequest, "password does not meet policy")
		return
	}

	if existing, _ := h.Repo.GetUserByEmail(req.Email); existing != nil {
		utils.JSONError(w, http.StatusConflict, "email taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	user := &models.User{Email: req.Email, PasswordHash: string(hash), First: req.First, Last: req.Last}
	if err := h.Repo.CreateUser(user); err != nil {
		h.Log.Error("create user failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]any{"id": user.ID, "email": user.Email, "first": user.First, "last": user.Last})
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.Repo.GetUserByEmail(req.Email)
	if err != nil {
		// Unknown email and wrong password are indistinguishable on purpose.
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.JSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := utils.IssueToken(user.Email, h.JWTSecret, time.Now())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	utils.JSON(w, http.StatusOK, authResponse{Token: token})
}

// ResetHandler replaces a password when email and stored last name match.
func (h *AuthHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.Repo.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			utils.JSONError(w, http.StatusBadRequest, "no such email")
			return
		}
		utils.JSONError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if req.Last != user.Last {
		utils.JSONError(w, http.StatusUnauthorized, "last name does not match")
		return
	}
	if !utils.IsPasswordValid(req.Password) {
		utils.JSONError(w, http.StatusBadRequest, "password does not meet policy")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := h.Repo.UpdatePassword(req.Email, string(hash)); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to update password")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// MeHandler returns the display identity of the authenticated user.
func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := utils.VerifyRequest(r, h.JWTSecret)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, err.Error())
		return
	}
	user, err := h.Repo.GetUserByEmail(claims.Email)
	if err != nil {
		utils.JSONError(w, http.StatusNotFound, "user not found")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"first": user.First, "last": user.Last})
}
