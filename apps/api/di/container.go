package di

import (
	"fmt"
	"io"
	"log"

	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/sogrim/sogrim/apps/api/echo"
	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/degree"
	"github.com/sogrim/sogrim/core/user"
	logsvc "github.com/sogrim/sogrim/services/logger"
	"github.com/sogrim/sogrim/storage/database"
	inmemdb "github.com/sogrim/sogrim/storage/database/inmem"
	sqlxrepos "github.com/sogrim/sogrim/storage/database/sqlx"
)

// Storage is the set of repositories of the configured database engine.
type Storage struct {
	dig.Out

	Users    user.Repository
	Catalogs catalog.Repository
	Courses  course.Repository
	DB       io.Closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newLogger(zl *zap.Logger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(zl, conf)
}

func newStorage(conf *core.Config, logger core.Logger) (Storage, error) {
	if conf.Database.Engine == database.EngineMemory {
		logger.Warn("using the in-memory database: data is lost on exit")
		db := inmemdb.Open()
		return Storage{
			Users:    inmemdb.NewUserRepository(db),
			Catalogs: inmemdb.NewCatalogRepository(db),
			Courses:  inmemdb.NewCourseRepository(db),
			DB:       nopCloser{},
		}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return Storage{}, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return Storage{}, err
	}
	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return Storage{}, err
	}
	logger.Info(fmt.Sprintf("database ready: %s", conf.Database.Engine))
	return Storage{
		Users:    sqlxrepos.NewUserRepository(db),
		Catalogs: sqlxrepos.NewCatalogRepository(db),
		Courses:  sqlxrepos.NewCourseRepository(db),
		DB:       db,
	}, nil
}

func newDegreeService(catalogs *catalog.Service, courses *course.Service) *degree.Service {
	return degree.NewService(catalogs, courses)
}

func newUserService(repo user.Repository, catalogs *catalog.Service, evaluator *degree.Service) *user.Service {
	return user.NewService(repo, catalogs, evaluator)
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(logsvc.NewZap))
	must(c.Provide(newLogger))
	must(c.Provide(newStorage))
	must(c.Provide(catalog.NewService))
	must(c.Provide(course.NewService))
	must(c.Provide(newDegreeService))
	must(c.Provide(newUserService))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
