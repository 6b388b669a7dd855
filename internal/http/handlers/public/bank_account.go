package public

import (
	"errors"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMyBankAccount returns the user's payout destination.
func (h *Handler) GetMyBankAccount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	account, err := h.UserService.GetBankAccount(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.bank_account_fetch_failed", err)
		return
	}
	if account == nil {
		respondError(c, response.CodeNotFound, "error.bank_account_not_found", nil)
		return
	}
	response.Success(c, account)
}

// UpsertBankAccountRequest carries the payout destination. Either a
// PIX key or full bank coordinates must be present.
type UpsertBankAccountRequest struct {
	HolderName string `json:"holder_name" binding:"required"`
	HolderDoc  string `json:"holder_doc" binding:"required"`
	BankCode   string `json:"bank_code"`
	Branch     string `json:"branch"`
	AccountNo  string `json:"account_no"`
	PixKey     string `json:"pix_key"`
}

// UpsertMyBankAccount saves the user's payout destination.
func (h *Handler) UpsertMyBankAccount(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpsertBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	account, err := h.UserService.UpsertBankAccount(uid, service.BankAccountInput{
		HolderName: req.HolderName,
		HolderDoc:  req.HolderDoc,
		BankCode:   req.BankCode,
		Branch:     req.Branch,
		AccountNo:  req.AccountNo,
		PixKey:     req.PixKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBankAccountInvalid):
			respondError(c, response.CodeBadRequest, "error.bank_account_invalid", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, account)
}
