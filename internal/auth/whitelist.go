package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gdgoc-itb/lms-service/internal/config"
	"github.com/gdgoc-itb/lms-service/internal/models"
)

// AdminLookup is the single store read the whitelist needs.
type AdminLookup interface {
	ExistsByEmailAndAccess(ctx context.Context, email string, levels ...models.AccessLevel) (bool, error)
}

// Whitelist decides whether an email is a pre-approved Member.
type Whitelist struct {
	emails  map[string]struct{}
	domains map[string]struct{}
	store   AdminLookup
	logger  *slog.Logger
}

func NewWhitelist(cfg config.WhitelistConfig, store AdminLookup, logger *slog.Logger) *Whitelist {
	w := &Whitelist{
		emails:  make(map[string]struct{}, len(cfg.Emails)),
		domains: make(map[string]struct{}, len(cfg.Domains)),
		store:   store,
		logger:  logger,
	}
	for _, email := range cfg.Emails {
		w.emails[models.NormalizeEmail(email)] = struct{}{}
	}
	for _, domain := range cfg.Domains {
		w.domains[strings.ToLower(strings.TrimSpace(domain))] = struct{}{}
	}
	return w
}

// IsWhitelisted checks the static emails, then the static domains, then existing
// admin records. A store failure counts as not whitelisted.
func (w *Whitelist) IsWhitelisted(ctx context.Context, email string) bool {
	email = models.NormalizeEmail(email)
	if email == "" {
		return false
	}

	if _, ok := w.emails[email]; ok {
		return true
	}

	if at := strings.LastIndex(email, "@"); at >= 0 {
		if _, ok := w.domains[email[at+1:]]; ok {
			return true
		}
	}

	if w.store == nil {
		return false
	}

	isAdmin, err := w.store.ExistsByEmailAndAccess(ctx, email, models.AdminAccessLevels...)
	if err != nil {
		w.logger.Error("Whitelist admin lookup failed", "email", email, "error", err)
		return false
	}
	return isAdmin
}
