package i18n

import "github.com/assinahub/assinahub/internal/constants"

// Message catalogs, keyed by locale. Portuguese is the product language;
// English exists for API consumers that ask for it.
var catalogs = map[string]map[string]string{
	constants.LocalePtBR: {
		"error.bad_request":  "Requisição inválida",
		"error.unauthorized": "Não autorizado",
		"error.forbidden":    "Acesso negado",
		"error.save_failed":  "Não foi possível salvar, tente novamente",

		"error.auth_header_missing":    "Informe o token de acesso",
		"error.auth_header_invalid":    "Token de acesso malformado",
		"error.token_invalid":          "Sessão inválida, faça login novamente",
		"error.token_revoked":          "Sessão revogada, faça login novamente",
		"error.jwt_secret_missing":     "Autenticação indisponível",
		"error.rate_limited":           "Muitas tentativas, tente novamente mais tarde",
		"error.rate_limit_unavailable": "Serviço temporariamente indisponível",
		"error.login_too_many":         "Muitas tentativas de login, aguarde e tente novamente",

		"error.user_id_invalid":       "Identificação de usuário inválida",
		"error.user_id_type_invalid":  "Identificação de usuário inválida",
		"error.admin_id_invalid":      "Identificação de operador inválida",
		"error.admin_id_type_invalid": "Identificação de operador inválida",

		"error.email_invalid":         "E-mail inválido",
		"error.email_exists":          "E-mail já cadastrado",
		"error.invalid_credentials":   "E-mail ou senha incorretos",
		"error.user_disabled":         "Conta desativada",
		"error.user_not_found":        "Usuário não encontrado",
		"error.user_fetch_failed":     "Não foi possível carregar os usuários",
		"error.user_status_frozen":    "Conta anonimizada não pode mudar de status",
		"error.referral_code_invalid": "Código de indicação inválido",
		"error.register_failed":       "Não foi possível concluir o cadastro",
		"error.login_failed":          "Não foi possível concluir o login",
		"error.old_password_invalid":  "Senha atual incorreta",
		"error.password_weak":         "A senha não atende à política de segurança",

		"error.password_min_length":      "A senha deve ter pelo menos %d caracteres",
		"error.password_require_upper":   "A senha deve conter letra maiúscula",
		"error.password_require_lower":   "A senha deve conter letra minúscula",
		"error.password_require_number":  "A senha deve conter número",
		"error.password_require_special": "A senha deve conter caractere especial",

		"error.captcha_required":        "Informe o captcha",
		"error.captcha_invalid":         "Captcha inválido ou expirado",
		"error.captcha_unavailable":     "Captcha indisponível",
		"error.captcha_config_invalid":  "Configuração de captcha inválida",
		"error.captcha_generate_failed": "Não foi possível gerar o captcha",
		"error.captcha_verify_failed":   "Não foi possível validar o captcha",

		"error.plan_not_found":    "Plano não encontrado",
		"error.plan_inactive":     "Plano indisponível",
		"error.plan_invalid":      "Dados do plano inválidos",
		"error.plan_slug_exists":  "Já existe um plano com este identificador",
		"error.plan_in_use":       "Plano possui assinaturas e não pode ser removido",
		"error.plan_fetch_failed": "Não foi possível carregar os planos",

		"error.order_not_found":        "Pedido não encontrado",
		"error.order_not_pending":      "Pedido não está aguardando pagamento",
		"error.order_already_paid":     "Pedido já foi pago",
		"error.order_create_failed":    "Não foi possível criar o pedido",
		"error.order_cancel_failed":    "Não foi possível cancelar o pedido",
		"error.order_fetch_failed":     "Não foi possível carregar os pedidos",
		"error.order_mark_paid_failed": "Não foi possível confirmar o pagamento",

		"error.subscription_none":          "Nenhuma assinatura encontrada",
		"error.subscription_not_found":     "Assinatura não encontrada",
		"error.subscription_state_invalid": "Assinatura não permite esta operação",
		"error.subscription_fetch_failed":  "Não foi possível carregar as assinaturas",
		"error.subscription_cancel_failed": "Não foi possível cancelar a assinatura",

		"error.coupon_invalid":        "Cupom inválido",
		"error.coupon_expired":        "Cupom fora do período de validade",
		"error.coupon_exhausted":      "Cupom esgotado",
		"error.coupon_per_user_limit": "Você já atingiu o limite de uso deste cupom",
		"error.coupon_min_amount":     "Valor mínimo do pedido não atingido para este cupom",
		"error.coupon_not_applicable": "Cupom não se aplica a este plano",
		"error.coupon_not_found":      "Cupom não encontrado",
		"error.coupon_code_exists":    "Já existe um cupom com este código",
		"error.coupon_fetch_failed":   "Não foi possível carregar os cupons",
		"error.coupon_quote_failed":   "Não foi possível calcular o desconto",

		"error.commission_not_found":     "Comissão não encontrada",
		"error.commission_state_invalid": "Comissão não permite esta operação",
		"error.commission_fetch_failed":  "Não foi possível carregar as comissões",

		"error.withdrawal_below_minimum":   "Valor abaixo do mínimo para saque",
		"error.withdrawal_insufficient":    "Saldo disponível insuficiente",
		"error.withdrawal_no_bank_account": "Cadastre seus dados bancários antes de solicitar o saque",
		"error.withdrawal_already_open":    "Já existe uma solicitação de saque em andamento",
		"error.withdrawal_not_found":       "Solicitação de saque não encontrada",
		"error.withdrawal_state_invalid":   "Solicitação de saque não permite esta transição",
		"error.withdrawal_action_invalid":  "Ação de revisão inválida",
		"error.withdrawal_amount_invalid":  "Valor de saque inválido",
		"error.withdrawal_create_failed":   "Não foi possível registrar o saque",
		"error.withdrawal_cancel_failed":   "Não foi possível cancelar o saque",
		"error.withdrawal_review_failed":   "Não foi possível revisar o saque",
		"error.withdrawal_fetch_failed":    "Não foi possível carregar os saques",

		"error.bank_account_invalid":      "Dados bancários inválidos",
		"error.bank_account_not_found":    "Dados bancários não cadastrados",
		"error.bank_account_fetch_failed": "Não foi possível carregar os dados bancários",

		"error.data_request_kind_invalid":  "Tipo de solicitação inválido",
		"error.data_request_open":          "Já existe uma solicitação aberta deste tipo",
		"error.data_request_not_found":     "Solicitação não encontrada",
		"error.data_request_state_invalid": "Solicitação não permite esta operação",
		"error.data_request_create_failed": "Não foi possível registrar a solicitação",
		"error.data_request_review_failed": "Não foi possível revisar a solicitação",
		"error.data_request_fetch_failed":  "Não foi possível carregar as solicitações",
		"error.consent_fetch_failed":       "Não foi possível carregar os consentimentos",

		"error.erasure_active_subscription": "Exclusão bloqueada: assinatura ativa",
		"error.erasure_pending_withdrawal":  "Exclusão bloqueada: saque em andamento",
		"error.erasure_fiscal_retention":    "Exclusão bloqueada: retenção fiscal de cobranças recentes",

		"error.audit_fetch_failed":     "Não foi possível carregar a auditoria",
		"error.backup_failed":          "Não foi possível executar o backup",
		"error.storage_not_configured": "Armazenamento de objetos não configurado",
		"error.queue_unavailable":      "Fila de tarefas indisponível",
		"error.dashboard_fetch_failed": "Não foi possível carregar o painel",

		"error.admin_not_found":       "Operador não encontrado",
		"error.admin_fetch_failed":    "Não foi possível carregar os operadores",
		"error.admin_username_exists": "Já existe um operador com este usuário",
		"error.admin_delete_self":     "Não é possível remover o próprio acesso",
		"error.authz_fetch_failed":    "Não foi possível carregar as permissões",
		"error.authz_role_invalid":    "Papel inválido",
		"error.authz_role_immutable":  "Papéis internos não podem ser alterados",
		"error.authz_policy_invalid":  "Permissão inválida",
	},
	constants.LocaleEnUS: {
		"error.bad_request":  "Invalid request",
		"error.unauthorized": "Unauthorized",
		"error.forbidden":    "Forbidden",
		"error.save_failed":  "Could not save, please try again",

		"error.auth_header_missing":    "Access token required",
		"error.auth_header_invalid":    "Malformed access token",
		"error.token_invalid":          "Invalid session, please sign in again",
		"error.token_revoked":          "Session revoked, please sign in again",
		"error.jwt_secret_missing":     "Authentication unavailable",
		"error.rate_limited":           "Too many attempts, try again later",
		"error.rate_limit_unavailable": "Service temporarily unavailable",
		"error.login_too_many":         "Too many login attempts, please wait",

		"error.user_id_invalid":       "Invalid user identification",
		"error.user_id_type_invalid":  "Invalid user identification",
		"error.admin_id_invalid":      "Invalid operator identification",
		"error.admin_id_type_invalid": "Invalid operator identification",

		"error.email_invalid":         "Invalid email",
		"error.email_exists":          "Email already registered",
		"error.invalid_credentials":   "Incorrect email or password",
		"error.user_disabled":         "Account disabled",
		"error.user_not_found":        "User not found",
		"error.user_fetch_failed":     "Could not load users",
		"error.user_status_frozen":    "Anonymized accounts cannot change status",
		"error.referral_code_invalid": "Invalid referral code",
		"error.register_failed":       "Could not complete registration",
		"error.login_failed":          "Could not complete login",
		"error.old_password_invalid":  "Current password is incorrect",
		"error.password_weak":         "Password does not meet the security policy",

		"error.password_min_length":      "Password must be at least %d characters long",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a digit",
		"error.password_require_special": "Password must contain a special character",

		"error.captcha_required":        "Captcha required",
		"error.captcha_invalid":         "Captcha invalid or expired",
		"error.captcha_unavailable":     "Captcha unavailable",
		"error.captcha_config_invalid":  "Invalid captcha configuration",
		"error.captcha_generate_failed": "Could not generate captcha",
		"error.captcha_verify_failed":   "Could not verify captcha",

		"error.plan_not_found":    "Plan not found",
		"error.plan_inactive":     "Plan unavailable",
		"error.plan_invalid":      "Invalid plan data",
		"error.plan_slug_exists":  "A plan with this slug already exists",
		"error.plan_in_use":       "Plan has subscriptions and cannot be removed",
		"error.plan_fetch_failed": "Could not load plans",

		"error.order_not_found":        "Order not found",
		"error.order_not_pending":      "Order is not awaiting payment",
		"error.order_already_paid":     "Order already paid",
		"error.order_create_failed":    "Could not create the order",
		"error.order_cancel_failed":    "Could not cancel the order",
		"error.order_fetch_failed":     "Could not load orders",
		"error.order_mark_paid_failed": "Could not confirm the payment",

		"error.subscription_none":          "No subscription found",
		"error.subscription_not_found":     "Subscription not found",
		"error.subscription_state_invalid": "Subscription does not allow this operation",
		"error.subscription_fetch_failed":  "Could not load subscriptions",
		"error.subscription_cancel_failed": "Could not cancel the subscription",

		"error.coupon_invalid":        "Invalid coupon",
		"error.coupon_expired":        "Coupon outside validity window",
		"error.coupon_exhausted":      "Coupon exhausted",
		"error.coupon_per_user_limit": "You have reached the usage limit for this coupon",
		"error.coupon_min_amount":     "Order does not meet the coupon minimum amount",
		"error.coupon_not_applicable": "Coupon does not apply to this plan",
		"error.coupon_not_found":      "Coupon not found",
		"error.coupon_code_exists":    "A coupon with this code already exists",
		"error.coupon_fetch_failed":   "Could not load coupons",
		"error.coupon_quote_failed":   "Could not compute the discount",

		"error.commission_not_found":     "Commission not found",
		"error.commission_state_invalid": "Commission does not allow this operation",
		"error.commission_fetch_failed":  "Could not load commissions",

		"error.withdrawal_below_minimum":   "Amount below the withdrawal minimum",
		"error.withdrawal_insufficient":    "Insufficient available balance",
		"error.withdrawal_no_bank_account": "Register your bank data before requesting a withdrawal",
		"error.withdrawal_already_open":    "A withdrawal request is already in progress",
		"error.withdrawal_not_found":       "Withdrawal request not found",
		"error.withdrawal_state_invalid":   "Withdrawal request does not allow this transition",
		"error.withdrawal_action_invalid":  "Invalid review action",
		"error.withdrawal_amount_invalid":  "Invalid withdrawal amount",
		"error.withdrawal_create_failed":   "Could not register the withdrawal",
		"error.withdrawal_cancel_failed":   "Could not cancel the withdrawal",
		"error.withdrawal_review_failed":   "Could not review the withdrawal",
		"error.withdrawal_fetch_failed":    "Could not load withdrawals",

		"error.bank_account_invalid":      "Invalid bank data",
		"error.bank_account_not_found":    "Bank data not registered",
		"error.bank_account_fetch_failed": "Could not load bank data",

		"error.data_request_kind_invalid":  "Invalid request kind",
		"error.data_request_open":          "An open request of this kind already exists",
		"error.data_request_not_found":     "Request not found",
		"error.data_request_state_invalid": "Request does not allow this operation",
		"error.data_request_create_failed": "Could not register the request",
		"error.data_request_review_failed": "Could not review the request",
		"error.data_request_fetch_failed":  "Could not load requests",
		"error.consent_fetch_failed":       "Could not load consents",

		"error.erasure_active_subscription": "Erasure blocked: active subscription",
		"error.erasure_pending_withdrawal":  "Erasure blocked: withdrawal in progress",
		"error.erasure_fiscal_retention":    "Erasure blocked: fiscal retention of recent charges",

		"error.audit_fetch_failed":     "Could not load audit events",
		"error.backup_failed":          "Could not run the backup",
		"error.storage_not_configured": "Object storage not configured",
		"error.queue_unavailable":      "Task queue unavailable",
		"error.dashboard_fetch_failed": "Failed to load the dashboard",

		"error.admin_not_found":       "Operator not found",
		"error.admin_fetch_failed":    "Could not load operators",
		"error.admin_username_exists": "An operator with this username already exists",
		"error.admin_delete_self":     "You cannot remove your own access",
		"error.authz_fetch_failed":    "Could not load permissions",
		"error.authz_role_invalid":    "Invalid role",
		"error.authz_role_immutable":  "Built-in roles cannot be changed",
		"error.authz_policy_invalid":  "Invalid policy",
	},
}
