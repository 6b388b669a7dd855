package service

import (
	"strings"
	"sync"
	"time"

	"github.com/assinahub/assinahub/internal/config"
	"github.com/assinahub/assinahub/internal/constants"

	"github.com/mojocn/base64Captcha"
)

// CaptchaVerifyPayload carries the challenge answer sent by clients.
type CaptchaVerifyPayload struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// CaptchaImageChallenge is a generated image challenge.
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService generates and verifies image captchas. Scenes are
// toggled in configuration; a disabled scene verifies as a no-op.
type CaptchaService struct {
	cfg config.CaptchaConfig

	mu                  sync.Mutex
	imageStore          base64Captcha.Store
	imageStoreMaxStore  int
	imageStoreExpireSec int
}

// NewCaptchaService creates the captcha service.
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{cfg: cfg}
}

// Enabled reports whether any captcha provider is configured.
func (s *CaptchaService) Enabled() bool {
	return s != nil && strings.TrimSpace(s.cfg.Provider) == constants.CaptchaProviderImage
}

// IsSceneEnabled reports whether the scene requires a captcha.
func (s *CaptchaService) IsSceneEnabled(scene string) bool {
	if !s.Enabled() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(scene)) {
	case constants.CaptchaSceneLogin:
		return s.cfg.Scenes.Login
	case constants.CaptchaSceneRegister:
		return s.cfg.Scenes.Register
	default:
		return false
	}
}

// GenerateImageChallenge produces a new image challenge.
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	if !s.Enabled() {
		return nil, ErrCaptchaConfigInvalid
	}
	store := s.ensureImageStore()
	driver := base64Captcha.NewDriverString(
		s.cfg.Image.Height,
		s.cfg.Image.Width,
		s.cfg.Image.NoiseCount,
		s.cfg.Image.ShowLine,
		s.cfg.Image.Length,
		"0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	captcha := base64Captcha.NewCaptcha(driver, store)
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify checks the payload for the given scene.
func (s *CaptchaService) Verify(scene string, payload CaptchaVerifyPayload) error {
	if !s.IsSceneEnabled(scene) {
		return nil
	}
	captchaID := strings.TrimSpace(payload.CaptchaID)
	captchaCode := strings.TrimSpace(payload.CaptchaCode)
	if captchaID == "" || captchaCode == "" {
		return ErrCaptchaRequired
	}
	if !s.ensureImageStore().Verify(captchaID, captchaCode, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *CaptchaService) ensureImageStore() base64Captcha.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	maxStore := s.cfg.Image.MaxStore
	if maxStore <= 0 {
		maxStore = 10240
	}
	expireSec := s.cfg.Image.ExpireSeconds
	if expireSec <= 0 {
		expireSec = 300
	}
	if s.imageStore != nil && s.imageStoreMaxStore == maxStore && s.imageStoreExpireSec == expireSec {
		return s.imageStore
	}
	s.imageStore = base64Captcha.NewMemoryStore(maxStore, time.Duration(expireSec)*time.Second)
	s.imageStoreMaxStore = maxStore
	s.imageStoreExpireSec = expireSec
	return s.imageStore
}
