package config

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Column headers in the credentials file downloaded from the AWS console.
const (
	CsvHeaderAccessKeyId     = "Access key ID"
	CsvHeaderSecretAccessKey = "Secret access key"
)

// SectionUpdater persists keys into a section of dwh.cfg.
type SectionUpdater interface {
	UpdateSection(section string, values map[string]string) error
}

// ImportCredentialsCsv copies the key pair in the first data row of the CSV at path into AWS_ACCESS.
func ImportCredentialsCsv(path string, u SectionUpdater) error {
	fh, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "error opening credentials file")
	}
	defer fh.Close()
	key, secret, err := ReadCredentialsCsv(fh)
	if err != nil {
		return errors.Wrapf(err, "error reading %v", path)
	}
	return u.UpdateSection(SectionAwsAccess, map[string]string{
		"aws_access_key_id":     key,
		"aws_secret_access_key": secret,
	})
}

// ReadCredentialsCsv returns the access key id and secret from the first data row.
func ReadCredentialsCsv(r io.Reader) (key string, secret string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return "", "", err
	}
	if len(records) < 2 {
		return "", "", errors.New("credentials file has no data rows")
	}
	idxKey, idxSecret := -1, -1
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case CsvHeaderAccessKeyId:
			idxKey = i
		case CsvHeaderSecretAccessKey:
			idxSecret = i
		}
	}
	if idxKey < 0 || idxSecret < 0 {
		return "", "", errors.Errorf("credentials file needs columns %q and %q", CsvHeaderAccessKeyId, CsvHeaderSecretAccessKey)
	}
	row := records[1]
	if idxKey >= len(row) || idxSecret >= len(row) {
		return "", "", errors.New("credentials file data row is too short")
	}
	return strings.TrimSpace(row[idxKey]), strings.TrimSpace(row[idxSecret]), nil
}
