package ui

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sogrim/sogrim/core/course"
)

// LoadCourses reads a YAML list of course statuses, or a grade sheet copied from the student portal.
func LoadCourses(path string) ([]course.Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading courses file")
	}
	if course.IsTranscript(string(data)) {
		statuses, err := course.ParseTranscript(string(data))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		return statuses, nil
	}
	var statuses []course.Status
	if err := yaml.Unmarshal(data, &statuses); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if len(statuses) == 0 {
		return nil, errors.Errorf("%s has no courses", path)
	}
	return statuses, nil
}
