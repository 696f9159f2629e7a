package actions

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/aws"
	"github.com/relloyd/sparkify-dwh/aws/s3"
	"github.com/relloyd/sparkify-dwh/cluster"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/queries"
	"github.com/relloyd/sparkify-dwh/rdbms"
)

type TablesConfig struct {
	Connections      ConnectionLoader `errorTxt:"connection store" mandatory:"yes"`
	ConnectionName   string           `errorTxt:"connection name" mandatory:"yes"`
	DdlFile          string           // replaces the built-in Sparkify schema
	DryRun           bool
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

// RunCreateTables drops and recreates the staging and star schema tables in one transaction.
func RunCreateTables(cfg *TablesConfig) error {
	ddl := queries.CreateTables
	if cfg.DdlFile != "" {
		b, err := ioutil.ReadFile(cfg.DdlFile)
		if err != nil {
			return errors.Wrap(err, "error reading DDL file")
		}
		ddl = string(b)
	}
	if cfg.DryRun {
		for _, s := range rdbms.SplitStatements(ddl) {
			_, _ = fmt.Fprintf(out(cfg.Out), "%v;\n", s)
		}
		return nil
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, cfg.StackDumpOnPanic)
	db, err := openWarehouse(log, cfg.Connections, cfg.ConnectionName)
	if err != nil {
		return err
	}
	defer db.Close()
	ctx, cancel := signalContext(log, context.Background())
	defer cancel()
	return cluster.CreateTables(ctx, log, db, ddl)
}

type BucketConfig struct {
	Connections      ConnectionLoader
	AwsConnection    string // optional; the default credential chain is used without it
	Bucket           string `errorTxt:"bucket" mandatory:"yes"`
	Region           string `errorTxt:"region" mandatory:"yes"`
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

var newBucketCreator = func(creds aws.Credentials, bucket string) (s3.BucketCreator, error) {
	sess, err := aws.NewSession(creds)
	if err != nil {
		return nil, err
	}
	return s3.NewClient(sess, bucket), nil
}

// RunCreateBucket creates the bucket that holds the raw song and log data.
func RunCreateBucket(cfg *BucketConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, cfg.StackDumpOnPanic)
	creds := aws.Credentials{Region: cfg.Region}
	if cfg.AwsConnection != "" {
		if cfg.Connections == nil {
			return errors.New("no connection store configured")
		}
		var err error
		if creds, err = loadAwsCredentials(cfg.Connections, cfg.AwsConnection, cfg.Region); err != nil {
			return err
		}
		creds.Region = cfg.Region
	}
	bc, err := newBucketCreator(creds, cfg.Bucket)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(log, context.Background())
	defer cancel()
	if _, err = bc.CreateBucket(ctx, cfg.Bucket, cfg.Region); err != nil {
		return err
	}
	log.Info("Created bucket ", cfg.Bucket, " in ", cfg.Region)
	_, _ = fmt.Fprintf(out(cfg.Out), "Bucket %q created\n", cfg.Bucket)
	return nil
}
