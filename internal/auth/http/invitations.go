package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/pkg/authsdk"
	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

type InvitationHandler struct {
	Invitations *service.InvitationService
	Sessions    *service.SessionService
	Cookies     CookieOptions
}

// HandleInvite godoc
//
//	@Summary		Invite a user
//	@Description	Creates a 24 hour invitation for email to join the caller's company with role.
//	@Description	The company is taken from the caller's token, never from the body. The accept link is logged server-side only.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.InviteRequest	true	"Invitee"
//	@Success		200		{object}	authsdk.MessageResponse	"Invitation sent successfully"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing or invalid fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"No token"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Invalid token or not an admin"
//	@Failure		409		{object}	authsdk.ErrorResponse	"User or active invitation exists"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/invite [post].
func (h *InvitationHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok || claims.CompanyID == "" {
		slogx.FromContext(ctx).Warn("invite attempted without a company in the token")
		httpx.WriteMessage(w, http.StatusForbidden, httpx.MsgForbidden)
		return
	}

	var req authsdk.InviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateInvite(&req); msg != "" {
		httpx.WriteMessage(w, http.StatusBadRequest, msg)
		return
	}

	_, err := h.Invitations.CreateInvitation(ctx, req.Email, claims.CompanyID, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			httpx.WriteMessage(w, http.StatusConflict, msgUserExists)
		case errors.Is(err, service.ErrInvitationExists):
			httpx.WriteMessage(w, http.StatusConflict, msgInvitationExists)
		case errors.Is(err, domain.ErrUnknownRole):
			httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidRole)
		default:
			writeInternal(w, r, "failed to create invitation", err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: msgInvitationSent})
}

// HandleAcceptInvite godoc
//
//	@Summary		Accept an invitation
//	@Description	Creates the invited user with the invitation's company and role, consumes the invitation and signs the user in.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.AcceptInviteRequest		true	"Invitation token and new password"
//	@Success		200		{object}	authsdk.AcceptInviteResponse	"message, userId, token"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Missing fields or invalid/expired token"
//	@Failure		409		{object}	authsdk.ErrorResponse			"User already exists"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/accept-invite [post].
func (h *InvitationHandler) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req authsdk.AcceptInviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateAcceptInvite(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, msgAcceptFieldsRequired)
		return
	}

	user, err := h.Invitations.AcceptInvitation(r.Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInvitation):
			httpx.WriteMessage(w, http.StatusBadRequest, msgInvalidInvitation)
		case errors.Is(err, service.ErrUserExists):
			httpx.WriteMessage(w, http.StatusConflict, msgUserExists)
		case errors.Is(err, cryptox.ErrPasswordTooLong):
			httpx.WriteMessage(w, http.StatusBadRequest, msgPasswordTooLong)
		default:
			writeInternal(w, r, "failed to accept invitation", err)
		}
		return
	}

	token, err := h.Sessions.IssueFor(user)
	if err != nil {
		writeInternal(w, r, "failed to issue session", err)
		return
	}

	h.Cookies.set(w, token)
	httpx.WriteJSON(w, http.StatusOK, authsdk.AcceptInviteResponse{
		Message: msgInviteAccepted,
		UserID:  user.ID,
		Token:   token,
	})
}
