package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/auth"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
)

// coursesFile is the layout of the importcourses YAML file.
type coursesFile struct {
	Courses []course.Course `yaml:"courses"`
	Malags  []string        `yaml:"malags"`
}

func decodeYAMLFile(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	return nil
}

func (cli *commandLine) importCatalog(ctx context.Context, path string) error {
	var cat catalog.Catalog
	if err := decodeYAMLFile(path, &cat); err != nil {
		return err
	}
	cat, err := cli.catalogSvc.Save(ctx, cat)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "imported catalog %q (%s): %d banks, %d courses\n", cat.Name, cat.ID, len(cat.CourseBanks), len(cat.CourseToBank))
	return nil
}

func (cli *commandLine) importCourses(ctx context.Context, path string) error {
	var data coursesFile
	if err := decodeYAMLFile(path, &data); err != nil {
		return err
	}
	for _, c := range data.Courses {
		if err := core.Validate.Struct(c); err != nil {
			return errors.Wrapf(err, "course %q", c.ID)
		}
	}
	if err := cli.courseSvc.Save(ctx, data.Courses...); err != nil {
		return err
	}
	if data.Malags != nil {
		if err := cli.courseSvc.SetMalags(ctx, data.Malags); err != nil {
			return err
		}
	}
	fmt.Fprintf(cli.out, "imported %d courses, %d malags\n", len(data.Courses), len(data.Malags))
	return nil
}

func signToken(conf *core.Config, sub, name, email string, ttl time.Duration) (string, error) {
	return auth.Sign(auth.NewClaims(core.CleanString(sub), name, email, ttl), []byte(conf.SecretKey))
}
