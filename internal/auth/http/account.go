package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/pkg/authsdk"
	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/httpx"
)

type AccountHandler struct {
	Accounts *service.AccountService
	Cookies  CookieOptions
}

// HandleRegister godoc
//
//	@Summary		Register a company
//	@Description	Creates a company and its first admin user, then signs the admin in.
//	@Description	The session token is returned in the body and set as the "token" cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"Company and admin credentials"
//	@Success		201		{object}	authsdk.RegisterResponse	"message, userId, companyId, token"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Missing fields"
//	@Failure		409		{object}	authsdk.ErrorResponse		"Company name or username taken"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/register [post].
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateRegister(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgRegisterFieldsRequired)
		return
	}

	reg, err := h.Accounts.RegisterCompany(r.Context(), req.CompanyName, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompanyOrUserExists):
			httpx.WriteMessage(w, http.StatusConflict, msgCompanyOrUserExists)
		case errors.Is(err, cryptox.ErrPasswordTooLong):
			httpx.WriteMessage(w, http.StatusBadRequest, msgPasswordTooLong)
		default:
			writeInternal(w, r, "failed to register company", err)
		}
		return
	}

	h.Cookies.set(w, reg.Token)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		Message:   msgRegistered,
		UserID:    reg.User.ID,
		CompanyID: reg.Company.ID,
		Token:     reg.Token,
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Verifies a username and password and issues a one hour session token.
//	@Description	Unknown users and wrong passwords get the same 401.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"message, token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/login [post].
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateLogin(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgLoginFieldsRequired)
		return
	}

	_, token, err := h.Accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteMessage(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		writeInternal(w, r, "failed to log in", err)
		return
	}

	h.Cookies.set(w, token)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Message: msgLoggedIn,
		Token:   token,
	})
}
