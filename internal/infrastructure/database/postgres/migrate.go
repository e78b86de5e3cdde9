package postgres

import (
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/ravi-ivar-7/hilabs/internal/config"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/migrations"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

// Migrate applies all pending schema migrations from the embedded migration
// set.  Safe to call on every startup; a no-op when the schema is current.
func Migrate(cfg config.DatabaseConfig, log logging.Logger) error {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("migrate")

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "pgx5://"+dsnHostPart(cfg))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to initialise migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to apply migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read migration version")
	}
	log.Info("schema migrations applied",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// dsnHostPart renders the DSN without the scheme, as golang-migrate selects
// the driver from its own scheme prefix.
func dsnHostPart(cfg config.DatabaseConfig) string {
	full := DSN(cfg)
	const scheme = "postgres://"
	return full[len(scheme):]
}
