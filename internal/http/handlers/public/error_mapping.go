package public

import (
	"errors"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps a business error to an API response.
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var couponErrorRules = []mappedHandlerError{
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, key: "error.coupon_invalid"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, key: "error.coupon_expired"},
	{target: service.ErrCouponExhausted, code: response.CodeBadRequest, key: "error.coupon_exhausted"},
	{target: service.ErrCouponPerUserLimit, code: response.CodeBadRequest, key: "error.coupon_per_user_limit"},
	{target: service.ErrCouponMinAmount, code: response.CodeBadRequest, key: "error.coupon_min_amount"},
	{target: service.ErrCouponNotApplicable, code: response.CodeBadRequest, key: "error.coupon_not_applicable"},
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrPlanNotFound, code: response.CodeNotFound, key: "error.plan_not_found"},
	{target: service.ErrPlanInactive, code: response.CodeBadRequest, key: "error.plan_inactive"},
	{target: service.ErrUserDisabled, code: response.CodeForbidden, key: "error.user_disabled"},
}

var withdrawalRequestErrorRules = []mappedHandlerError{
	{target: service.ErrWithdrawalBelowMinimum, code: response.CodeBadRequest, key: "error.withdrawal_below_minimum"},
	{target: service.ErrWithdrawalInsufficient, code: response.CodeBadRequest, key: "error.withdrawal_insufficient"},
	{target: service.ErrWithdrawalNoBankAccount, code: response.CodeBadRequest, key: "error.withdrawal_no_bank_account"},
	{target: service.ErrWithdrawalAlreadyOpen, code: response.CodeBadRequest, key: "error.withdrawal_already_open"},
}

var dataRequestCreateErrorRules = []mappedHandlerError{
	{target: service.ErrDataRequestKindInvalid, code: response.CodeBadRequest, key: "error.data_request_kind_invalid"},
	{target: service.ErrDataRequestOpen, code: response.CodeBadRequest, key: "error.data_request_open"},
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCreateErrorRules, couponErrorRules), response.CodeInternal, "error.order_create_failed")
}

func respondCouponQuoteError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(couponErrorRules, []mappedHandlerError{
		{target: service.ErrPlanNotFound, code: response.CodeNotFound, key: "error.plan_not_found"},
		{target: service.ErrPlanInactive, code: response.CodeBadRequest, key: "error.plan_inactive"},
	}), response.CodeInternal, "error.coupon_quote_failed")
}

func respondWithdrawalRequestError(c *gin.Context, err error) {
	respondWithMappedError(c, err, withdrawalRequestErrorRules, response.CodeInternal, "error.withdrawal_create_failed")
}
