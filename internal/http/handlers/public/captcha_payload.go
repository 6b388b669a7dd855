package public

import handlershared "github.com/assinahub/assinahub/internal/http/handlers/shared"

// CaptchaPayloadRequest carries captcha fields on auth requests.
type CaptchaPayloadRequest = handlershared.CaptchaPayloadRequest
