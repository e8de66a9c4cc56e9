package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gdgoc-itb/lms-service/internal/config"
	"github.com/gdgoc-itb/lms-service/internal/models"
)

type stubAdminLookup struct {
	admins map[string]bool
	err    error
	calls  int
}

func (s *stubAdminLookup) ExistsByEmailAndAccess(ctx context.Context, email string, levels ...models.AccessLevel) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.admins[email], nil
}

func newTestWhitelist(store AdminLookup) *Whitelist {
	return NewWhitelist(config.WhitelistConfig{
		Emails:  []string{"Admin@GDGoC-ITB.com", "test@example.com"},
		Domains: []string{"itb.ac.id"},
	}, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestWhitelist_StaticMatchesSkipStore(t *testing.T) {
	store := &stubAdminLookup{}
	w := newTestWhitelist(store)
	ctx := context.Background()

	assert.True(t, w.IsWhitelisted(ctx, "admin@gdgoc-itb.com"))
	assert.True(t, w.IsWhitelisted(ctx, "  TEST@example.com "))
	assert.True(t, w.IsWhitelisted(ctx, "someone@ITB.ac.id"))
	assert.Equal(t, 0, store.calls)
}

func TestWhitelist_DomainIsExact(t *testing.T) {
	w := newTestWhitelist(&stubAdminLookup{})

	assert.False(t, w.IsWhitelisted(context.Background(), "student@std.stei.itb.ac.id"))
	assert.False(t, w.IsWhitelisted(context.Background(), "mallory@notitb.ac.id"))
}

func TestWhitelist_AdminRecordMatches(t *testing.T) {
	store := &stubAdminLookup{admins: map[string]bool{"lead@gmail.com": true}}
	w := newTestWhitelist(store)

	assert.True(t, w.IsWhitelisted(context.Background(), "Lead@gmail.com"))
	assert.False(t, w.IsWhitelisted(context.Background(), "random@gmail.com"))
	assert.Equal(t, 2, store.calls)
}

func TestWhitelist_StoreErrorFailsClosed(t *testing.T) {
	w := newTestWhitelist(&stubAdminLookup{err: errors.New("connection refused")})

	assert.False(t, w.IsWhitelisted(context.Background(), "lead@gmail.com"))
}

func TestWhitelist_EmptyEmail(t *testing.T) {
	store := &stubAdminLookup{}
	w := newTestWhitelist(store)

	assert.False(t, w.IsWhitelisted(context.Background(), ""))
	assert.Equal(t, 0, store.calls)
}
