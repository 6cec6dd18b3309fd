package sqlbackend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"realtysite/internal/remote"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (b *Backend) SignUp(ctx context.Context, email, password string) (*remote.Account, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, remote.Wrap("signup", "", err)
	}

	u := authUser{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if b.autoConfirm {
		now := b.now()
		u.ConfirmedAt = &now
	}
	if err := b.db.WithContext(ctx).Create(&u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, remote.Wrap("signup", "", remote.ErrUserExists)
		}
		return nil, remote.Wrap("signup", "", err)
	}

	glog.Infof("sqlbackend signup user=%s confirmed=%t", u.ID, b.autoConfirm)
	return &remote.Account{
		User:      remote.User{ID: u.ID, Email: u.Email},
		Confirmed: u.ConfirmedAt != nil,
	}, nil
}

func (b *Backend) SignIn(ctx context.Context, email, password string) (*remote.Session, error) {
	var u authUser
	err := b.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, remote.Wrap("signin", "", remote.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, remote.Wrap("signin", "", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, remote.Wrap("signin", "", remote.ErrInvalidCredentials)
	}
	if u.ConfirmedAt == nil {
		return nil, remote.Wrap("signin", "", remote.ErrEmailNotConfirmed)
	}

	now := b.now()
	sess := authSession{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: now.Add(b.tokens.TTL()),
	}
	token, expiresAt, err := b.tokens.GenerateToken(u.ID, u.Email, sess.ID, now)
	if err != nil {
		return nil, remote.Wrap("signin", "", err)
	}
	sess.ExpiresAt = expiresAt
	if err := b.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return nil, remote.Wrap("signin", "", err)
	}

	user := remote.User{ID: u.ID, Email: u.Email}
	b.authEvents.Notify(ctx, remote.AuthEvent{Type: remote.EventSignedIn, AccessToken: token, User: &user})
	return &remote.Session{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

// SignOut revokes the session bound to the token. Unknown or already revoked
// tokens are not an error.
func (b *Backend) SignOut(ctx context.Context, accessToken string) error {
	claims, err := b.tokens.ValidateToken(accessToken)
	if err == nil {
		now := b.now()
		err = b.db.WithContext(ctx).Model(&authSession{}).
			Where("id = ? AND revoked_at IS NULL", claims.ID).
			Update("revoked_at", &now).Error
		if err != nil {
			return remote.Wrap("signout", "", err)
		}
	}
	b.authEvents.Notify(ctx, remote.AuthEvent{Type: remote.EventSignedOut, AccessToken: accessToken})
	return nil
}

func (b *Backend) CurrentUser(ctx context.Context, accessToken string) (*remote.User, error) {
	claims, err := b.tokens.ValidateToken(accessToken)
	if err != nil {
		return nil, nil
	}

	var sess authSession
	err = b.db.WithContext(ctx).
		Where("id = ? AND revoked_at IS NULL AND expires_at > ?", claims.ID, b.now()).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, remote.Wrap("user", "", err)
	}

	var u authUser
	err = b.db.WithContext(ctx).Where("id = ?", sess.UserID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, remote.Wrap("user", "", err)
	}
	return &remote.User{ID: u.ID, Email: u.Email}, nil
}

func (b *Backend) OnAuthStateChange(fn func(remote.AuthEvent)) (unsubscribe func()) {
	return b.authEvents.Add(func(_ context.Context, ev remote.AuthEvent) { fn(ev) })
}

// ConfirmUser marks the account as verified so it can sign in.
func (b *Backend) ConfirmUser(ctx context.Context, email string) error {
	res := b.db.WithContext(ctx).Model(&authUser{}).
		Where("email = ? AND confirmed_at IS NULL", normalizeEmail(email)).
		Update("confirmed_at", b.now())
	if res.Error != nil {
		return remote.Wrap("confirm", "", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := b.db.WithContext(ctx).Model(&authUser{}).
			Where("email = ?", normalizeEmail(email)).Count(&count).Error; err != nil {
			return remote.Wrap("confirm", "", err)
		}
		if count == 0 {
			return remote.Wrap("confirm", "", fmt.Errorf("%w: %s", remote.ErrNotFound, email))
		}
	}
	return nil
}

// PurgeSessions deletes sessions that expired or were revoked before cutoff.
func (b *Backend) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	res := b.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", cutoff, cutoff).
		Delete(&authSession{})
	if res.Error != nil {
		return 0, remote.Wrap("purge", "auth_sessions", res.Error)
	}
	return res.RowsAffected, nil
}
