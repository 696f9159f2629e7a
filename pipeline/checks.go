package pipeline

import (
	"io/ioutil"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/queries"
)

// LoadQualityChecks reads a YAML or JSON list of {sql_testcase, expected_result} from path.
func LoadQualityChecks(path string) ([]queries.QualityCheck, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading quality checks")
	}
	return ParseQualityChecks(b)
}

func ParseQualityChecks(b []byte) ([]queries.QualityCheck, error) {
	var checks []queries.QualityCheck
	if err := yaml.Unmarshal(b, &checks); err != nil {
		return nil, errors.Wrap(err, "error parsing quality checks")
	}
	for i, chk := range checks {
		if chk.SQL == "" {
			return nil, errors.Errorf("quality check #%v has no sql_testcase", i)
		}
	}
	return checks, nil
}
