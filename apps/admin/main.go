package main

import (
	"log"
	"os"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/user"
	"github.com/sogrim/sogrim/storage/database"
	sqlxrepos "github.com/sogrim/sogrim/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	errAndDie(db.Ping())

	// start CLI
	catalogSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(db))
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(db))
	cli := commandLine{
		conf:       conf,
		db:         db,
		out:        os.Stdout,
		catalogSvc: catalogSvc,
		courseSvc:  courseSvc,
		usrSvc:     user.NewService(sqlxrepos.NewUserRepository(db), catalogSvc, nil),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
