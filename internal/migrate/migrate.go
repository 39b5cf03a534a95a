// Package migrate evolves the contact_message schema and the module
// settings across releases. Changes are an ordered list of version-gated
// steps applied by a sequential runner; the installed version is recorded
// in the global settings store after every successful step.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/contactus/backend/internal/settings"
	"gorm.io/gorm"
)

// Env is what steps run against: the database plus the two settings
// stores, and a collector for one-time advisory notices shown to the
// administrator after an upgrade.
type Env struct {
	DB           *gorm.DB
	Settings     settings.Store
	SiteSettings settings.SiteStore
	Notices      *Notices
}

// Notices accumulates user-facing upgrade messages.
type Notices struct {
	msgs []string
}

func (n *Notices) Add(msg string) {
	n.msgs = append(n.msgs, msg)
}

func (n *Notices) All() []string {
	return n.msgs
}

// Step is one forward schema or settings transform, applied when the
// installed version is below Version. Legacy steps tolerate
// already-applied database errors (duplicate table/column/key); every
// other failure halts the sequence.
type Step struct {
	Version string
	Label   string
	Legacy  bool
	Run     func(ctx context.Context, env *Env) error
}

// A MigrationError halts the upgrade at the failing step; the recorded
// version stays at the last success so a fixed binary resumes there.
type MigrationError struct {
	Version string
	Label   string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s (%s): %v", e.Version, e.Label, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// Run upgrades the installation to target. On a fresh database (no
// version recorded) it installs the final schema directly and skips the
// historical steps. Returns the advisory notices produced.
func Run(ctx context.Context, env *Env, target string) ([]string, error) {
	if env.Notices == nil {
		env.Notices = &Notices{}
	}

	var installed string
	found, err := env.Settings.Get(ctx, settings.KeyVersion, &installed)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := Install(ctx, env); err != nil {
			return nil, err
		}
		if err := env.Settings.Set(ctx, settings.KeyVersion, target); err != nil {
			return nil, err
		}
		return env.Notices.All(), nil
	}

	return RunSteps(ctx, env, Steps(), target)
}

// RunSteps applies the given steps in order, gated by the recorded
// version, up to and including target.
func RunSteps(ctx context.Context, env *Env, steps []Step, target string) ([]string, error) {
	if env.Notices == nil {
		env.Notices = &Notices{}
	}
	var installed string
	if _, err := env.Settings.Get(ctx, settings.KeyVersion, &installed); err != nil {
		return nil, err
	}

	for _, step := range steps {
		if CompareVersions(installed, step.Version) >= 0 {
			continue
		}
		if CompareVersions(step.Version, target) > 0 {
			break
		}
		if err := step.Run(ctx, env); err != nil {
			if step.Legacy && isAlreadyApplied(err) {
				// Pre-versioning installations already carry this
				// schema; anything else must surface.
			} else {
				return env.Notices.All(), &MigrationError{Version: step.Version, Label: step.Label, Err: err}
			}
		}
		installed = step.Version
		if err := env.Settings.Set(ctx, settings.KeyVersion, installed); err != nil {
			return env.Notices.All(), &MigrationError{Version: step.Version, Label: step.Label, Err: err}
		}
	}

	if CompareVersions(installed, target) < 0 {
		if err := env.Settings.Set(ctx, settings.KeyVersion, target); err != nil {
			return env.Notices.All(), err
		}
	}
	return env.Notices.All(), nil
}

// isAlreadyApplied matches the database errors a re-run of legacy DDL
// produces on an up-to-date schema.
func isAlreadyApplied(err error) bool {
	var myErr *mysqldrv.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1050, // table already exists
			1060, // duplicate column name
			1061, // duplicate key name
			1022, // can't write; duplicate key
			1826: // duplicate foreign key constraint name
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "Duplicate column") ||
		strings.Contains(msg, "Duplicate key") ||
		strings.Contains(msg, "Duplicate foreign key")
}
