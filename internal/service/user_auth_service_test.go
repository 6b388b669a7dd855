package service

import (
	"errors"
	"testing"

	"github.com/assinahub/assinahub/internal/constants"
	"github.com/assinahub/assinahub/internal/models"
)

func TestRegisterWithReferralCode(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "madrinha@example.com", nil)

	user, token, _, err := env.userAuth.Register(UserRegisterInput{
		Email:        "Nova.Conta@Example.com",
		Password:     "SenhaForte123",
		ReferralCode: referrer.ReferralCode,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if token == "" {
		t.Fatalf("register should issue a token")
	}
	if user.Email != "nova.conta@example.com" {
		t.Fatalf("email should be normalized, got %s", user.Email)
	}
	if user.ReferredByID == nil || *user.ReferredByID != referrer.ID {
		t.Fatalf("referral should bind to the referrer: %+v", user.ReferredByID)
	}
	if user.ReferralCode == "" || user.ReferralCode == referrer.ReferralCode {
		t.Fatalf("new account needs its own code, got %q", user.ReferralCode)
	}
	if user.Locale != constants.LocalePtBR {
		t.Fatalf("default locale want pt-BR got %s", user.Locale)
	}

	// Registration records the terms consent.
	var consents int64
	env.db.Model(&models.Consent{}).Where("user_id = ? AND kind = ?", user.ID, constants.ConsentKindTerms).Count(&consents)
	if consents != 1 {
		t.Fatalf("terms consent want 1 got %d", consents)
	}
}

func TestRegisterRejectsBadReferral(t *testing.T) {
	env := newTestEnv(t)
	disabled := env.createUser(t, "sumida@example.com", nil)
	if err := env.db.Model(&models.User{}).Where("id = ?", disabled.ID).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable referrer failed: %v", err)
	}

	if _, _, _, err := env.userAuth.Register(UserRegisterInput{
		Email:        "conta1@example.com",
		Password:     "SenhaForte123",
		ReferralCode: "NAOEXISTE",
	}); !errors.Is(err, ErrReferralCodeInvalid) {
		t.Fatalf("unknown code want ErrReferralCodeInvalid got %v", err)
	}
	if _, _, _, err := env.userAuth.Register(UserRegisterInput{
		Email:        "conta2@example.com",
		Password:     "SenhaForte123",
		ReferralCode: disabled.ReferralCode,
	}); !errors.Is(err, ErrReferralCodeInvalid) {
		t.Fatalf("disabled referrer want ErrReferralCodeInvalid got %v", err)
	}
}

func TestRegisterDuplicateEmailAndWeakPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "ocupado@example.com", nil)

	if _, _, _, err := env.userAuth.Register(UserRegisterInput{
		Email:    "ocupado@example.com",
		Password: "SenhaForte123",
	}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate email want ErrEmailExists got %v", err)
	}

	_, _, _, err := env.userAuth.Register(UserRegisterInput{
		Email:    "fraca@example.com",
		Password: "curta1A",
	})
	var policyErr interface{ Key() string }
	if !errors.As(err, &policyErr) {
		t.Fatalf("weak password should fail the policy, got %v", err)
	}
	if policyErr.Key() != "error.password_min_length" {
		t.Fatalf("policy key want error.password_min_length got %s", policyErr.Key())
	}

	if _, _, _, err := env.userAuth.Register(UserRegisterInput{
		Email:    "nao-e-email",
		Password: "SenhaForte123",
	}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad email want ErrInvalidEmail got %v", err)
	}
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	registered, _, _, err := env.userAuth.Register(UserRegisterInput{
		Email:    "entra@example.com",
		Password: "SenhaForte123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, _, err := env.userAuth.Login("entra@example.com", "senhaerrada", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := env.userAuth.Login("ninguem@example.com", "SenhaForte123", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email want ErrInvalidCredentials got %v", err)
	}

	user, token, expiresAt, err := env.userAuth.Login("Entra@Example.com", "SenhaForte123", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID || user.LastLoginAt == nil {
		t.Fatalf("login result unexpected: %+v", user)
	}

	claims, err := env.userAuth.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("claims unexpected: %+v", claims)
	}
	// Numeric dates carry second precision.
	if !sameInstant(claims.ExpiresAt.Time, expiresAt) {
		t.Fatalf("expiry want %v got %v", expiresAt, claims.ExpiresAt.Time)
	}

	if _, err := env.userAuth.ParseUserJWT(token + "x"); err == nil {
		t.Fatalf("tampered token should not parse")
	}
}

func TestLoginDisabledUser(t *testing.T) {
	env := newTestEnv(t)
	if _, _, _, err := env.userAuth.Register(UserRegisterInput{
		Email:    "bloqueada@example.com",
		Password: "SenhaForte123",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := env.db.Model(&models.User{}).Where("email = ?", "bloqueada@example.com").Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable failed: %v", err)
	}

	if _, _, _, err := env.userAuth.Login("bloqueada@example.com", "SenhaForte123", false); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("want ErrUserDisabled got %v", err)
	}
}

func TestChangePasswordRevokesTokens(t *testing.T) {
	env := newTestEnv(t)
	user, _, _, err := env.userAuth.Register(UserRegisterInput{
		Email:    "troca-senha@example.com",
		Password: "SenhaForte123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := env.userAuth.ChangePassword(user.ID, "errada", "OutraForte456"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong old password want ErrInvalidPassword got %v", err)
	}
	if err := env.userAuth.ChangePassword(user.ID, "SenhaForte123", "fraca"); err == nil {
		t.Fatalf("weak new password should fail the policy")
	}

	if err := env.userAuth.ChangePassword(user.ID, "SenhaForte123", "OutraForte456"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	var reloaded models.User
	if err := env.db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.TokenVersion != user.TokenVersion+1 || reloaded.TokenInvalidBefore == nil {
		t.Fatalf("rotation should revoke tokens: %+v", reloaded)
	}

	if _, _, _, err := env.userAuth.Login("troca-senha@example.com", "OutraForte456", false); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, _, _, err := env.userAuth.Login("troca-senha@example.com", "SenhaForte123", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password want ErrInvalidCredentials got %v", err)
	}
}
