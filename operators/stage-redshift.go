package operators

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/aws"
	"github.com/relloyd/sparkify-dwh/aws/s3"
	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/rdbms"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
)

// StageToRedshift reloads a staging table from JSON files in S3 using COPY.
type StageToRedshift struct {
	Db          shared.Connector
	Credentials aws.CredentialsProvider // keys presented to S3 by COPY; unused when IamRoleArn is set.
	Table       string
	S3Bucket    string
	S3Key       string // template rendered against dag.RunContext.
	Region      string
	DataFormat  string // e.g. JSON 'auto'
	IamRoleArn  string
	Lister      s3.Lister // optional; used to warn when there is nothing to load.
}

// CopySpec is what goes into a Redshift COPY statement.
type CopySpec struct {
	Table           string
	Path            string
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
	IamRoleArn      string
	DataFormat      string
	Region          string
}

// BuildCopySql returns the COPY statement for spec.
// IAM_ROLE authorisation takes the place of the access keys when spec.IamRoleArn is set.
func BuildCopySql(spec CopySpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "COPY %v\nFROM '%v'\n", spec.Table, spec.Path)
	if spec.IamRoleArn != "" {
		fmt.Fprintf(&b, "IAM_ROLE '%v'\n", spec.IamRoleArn)
	} else {
		fmt.Fprintf(&b, "ACCESS_KEY_ID '%v'\nSECRET_ACCESS_KEY '%v'\n", spec.AccessKeyId, spec.SecretAccessKey)
		if spec.SessionToken != "" {
			fmt.Fprintf(&b, "SESSION_TOKEN '%v'\n", spec.SessionToken)
		}
	}
	fmt.Fprintf(&b, "%v REGION '%v'", spec.DataFormat, spec.Region)
	return b.String()
}

func (o *StageToRedshift) Execute(ctx context.Context, rc *dag.RunContext) error {
	if err := validateTable(o.Table); err != nil {
		return err
	}
	if o.S3Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	if o.IamRoleArn == "" && o.Credentials == nil {
		return errors.New("either AWS credentials or an IAM role ARN is required")
	}
	log := rc.Log
	log.Info("Clearing data from destination Redshift table ", o.Table)
	if err := rdbms.RunStatements(ctx, log, o.Db, "DELETE FROM "+o.Table); err != nil {
		return err
	}
	key, err := renderTemplate("s3_key", o.S3Key, rc)
	if err != nil {
		return err
	}
	path := s3.AwsS3Bucket{Name: o.S3Bucket}.Path(key)
	if o.Lister != nil {
		keys, err := o.Lister.List(ctx, key, 1)
		if err != nil {
			log.Warn("Unable to list ", path, ": ", err)
		} else if len(keys) == 0 {
			log.Warn("No objects found under ", path, ", COPY will load nothing")
		}
	}
	spec := CopySpec{
		Table:      o.Table,
		Path:       path,
		IamRoleArn: o.IamRoleArn,
		DataFormat: o.DataFormat,
		Region:     o.Region,
	}
	if o.IamRoleArn == "" {
		creds, err := o.Credentials.Retrieve(ctx)
		if err != nil {
			return errors.Wrap(err, "error fetching AWS credentials for COPY")
		}
		spec.AccessKeyId = creds.AccessKeyId
		spec.SecretAccessKey = creds.SecretAccessKey
		spec.SessionToken = creds.SessionToken
	}
	log.Info("Copy data from ", path, " to ", o.Table, " table")
	return rdbms.RunStatements(ctx, log, o.Db, BuildCopySql(spec))
}
