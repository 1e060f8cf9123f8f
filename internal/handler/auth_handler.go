package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"slicecraft/internal/middleware"
	"slicecraft/internal/service"
	"slicecraft/internal/uploads"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

type AuthHandler struct {
	authService service.AuthServiceInterface
	userService service.UserServiceInterface
	uploads     *uploads.Store
	frontendURL string
	logger      *logger.Logger
}

func NewAuthHandler(
	authService service.AuthServiceInterface,
	userService service.UserServiceInterface,
	uploadStore *uploads.Store,
	frontendURL string,
	log *logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		uploads:     uploadStore,
		frontendURL: frontendURL,
		logger:      log.WithComponent("auth_handler"),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req registerRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for register", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	user, token, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Failed to register user", "email", req.Email, "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusCreated, authResponse{Token: token, User: user})
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// RegisterAdmin handles POST /api/auth/admin/register
func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req registerRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for admin register", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	user, err := h.authService.RegisterAdmin(middleware.RoleFromContext(r.Context()), req.Name, req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Failed to register admin", "email", req.Email, "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusCreated, user)
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req loginRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for login", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, authResponse{Token: token, User: user})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	user, err := h.userService.GetProfile(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, user)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// UpdateProfile handles PUT /api/auth/profile. Accepts multipart form data so
// a new profile photo can ride along with the name and email fields.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	userID := middleware.UserIDFromContext(r.Context())

	var name, email, photoPath string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(uploads.MaxFileSize); err != nil {
			h.logger.Warn("Invalid multipart form for profile update", "error", err)
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid form data")
			reqCtx.StatusCode = http.StatusBadRequest
			h.logger.LogResponse(reqCtx)
			return
		}
		name = r.FormValue("name")
		email = r.FormValue("email")

		if file, header, err := r.FormFile("profilePhoto"); err == nil {
			defer file.Close()
			photoPath, err = h.uploads.SaveProfilePhoto(file, header)
			if err != nil {
				h.logger.Warn("Failed to save profile photo", "user_id", userID, "error", err)
				reqCtx.StatusCode = writeError(h.logger, w, err)
				h.logger.LogResponse(reqCtx)
				return
			}
		} else if !errors.Is(err, http.ErrMissingFile) {
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid profile photo upload")
			reqCtx.StatusCode = http.StatusBadRequest
			h.logger.LogResponse(reqCtx)
			return
		}
	} else {
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := parseRequestBody(r, &req); err != nil {
			h.logger.Warn("Invalid request body for profile update", "error", err)
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
			reqCtx.StatusCode = http.StatusBadRequest
			h.logger.LogResponse(reqCtx)
			return
		}
		name, email = req.Name, req.Email
	}

	var oldPhoto string
	if photoPath != "" {
		if current, err := h.userService.GetProfile(userID); err == nil {
			oldPhoto = current.ProfilePhoto
		}
	}

	user, err := h.userService.UpdateProfile(userID, name, email, photoPath)
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	if oldPhoto != "" && oldPhoto != user.ProfilePhoto {
		h.uploads.Remove(oldPhoto)
	}

	writeJSONResponse(h.logger, w, http.StatusOK, user)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req struct {
		Email string `json:"email"`
	}
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	if err := h.authService.ForgotPassword(req.Email, h.frontendURL); err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, map[string]string{"message": "Password reset email sent"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// ResetPassword handles POST /api/auth/reset-password/{token}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req struct {
		Password string `json:"password"`
	}
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	if err := h.authService.ResetPassword(mux.Vars(r)["token"], req.Password); err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, map[string]string{"message": "Password has been reset"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// ListUsers handles GET /api/auth/users
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	users, err := h.userService.ListUsers(middleware.RoleFromContext(r.Context()))
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, users)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// UpdateUser handles PUT /api/auth/users/{id}
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	user, err := h.userService.UpdateUserDetails(middleware.RoleFromContext(r.Context()), mux.Vars(r)["id"], req.Name, req.Email)
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, user)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// UpdateUserRole handles PUT /api/auth/users/{id}/role
func (h *AuthHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	user, err := h.userService.UpdateUserRole(middleware.RoleFromContext(r.Context()), mux.Vars(r)["id"], req.Role)
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, user)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// DeleteUser handles DELETE /api/auth/users/{id}
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if err := h.userService.DeleteUser(middleware.RoleFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, map[string]string{"message": "User deleted"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
