// Package pg bootstraps the Postgres layer: a pgx/v5 connection pool with
// retrying Connect, goose migrations over an fs.FS (usually embedded), a
// readiness probe and helpers that classify pgx errors.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if cfg.AutoMigrate {
//		if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//			return err
//		}
//	}
package pg
