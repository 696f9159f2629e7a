package config

import (
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// Sections of dwh.cfg.
const (
	SectionAwsAccess = "AWS_ACCESS"
	SectionIamRole   = "IAM_ROLE"
	SectionCluster   = "CLUSTER"
	SectionS3        = "S3"
)

// Dwh is the decoded contents of dwh.cfg.
type Dwh struct {
	AwsAccess AwsAccess     `mapstructure:"aws_access"`
	IamRole   IamRole       `mapstructure:"iam_role"`
	Cluster   ClusterConfig `mapstructure:"cluster"`
	S3        S3Config      `mapstructure:"s3"`
}

type AwsAccess struct {
	AccessKeyId     string `mapstructure:"aws_access_key_id"`
	SecretAccessKey string `mapstructure:"aws_secret_access_key"`
	Region          string `mapstructure:"aws_region" errorTxt:"AWS_ACCESS.aws_region" mandatory:"yes"`
}

type IamRole struct {
	Name      string `mapstructure:"name" errorTxt:"IAM_ROLE.name" mandatory:"yes"`
	PolicyArn string `mapstructure:"arn" errorTxt:"IAM_ROLE.arn" mandatory:"yes"`
	RoleArn   string `mapstructure:"redshift_arn"`
}

type ClusterConfig struct {
	ClusterType string `mapstructure:"dwh_cluster_type" errorTxt:"CLUSTER.dwh_cluster_type" mandatory:"yes"`
	NodeType    string `mapstructure:"node_type" errorTxt:"CLUSTER.node_type" mandatory:"yes"`
	NodeCount   int    `mapstructure:"node_count"`
	Identifier  string `mapstructure:"cluster_identifier" errorTxt:"CLUSTER.cluster_identifier" mandatory:"yes"`
	DbName      string `mapstructure:"db_name" errorTxt:"CLUSTER.db_name" mandatory:"yes"`
	DbUser      string `mapstructure:"db_user" errorTxt:"CLUSTER.db_user" mandatory:"yes"`
	DbPassword  string `mapstructure:"db_password" errorTxt:"CLUSTER.db_password" mandatory:"yes"`
	DbPort      int    `mapstructure:"db_port" errorTxt:"CLUSTER.db_port" mandatory:"yes"`
	Host        string `mapstructure:"host"`
}

type S3Config struct {
	Bucket      string `mapstructure:"bucket"`
	LogKey      string `mapstructure:"log_key"`
	SongKey     string `mapstructure:"song_key"`
	LogJsonPath string `mapstructure:"log_jsonpath"`
	Region      string `mapstructure:"region"`
}

// DwhFile is dwh.cfg loaded through viper. Updates are written back to the same file with ini.
type DwhFile struct {
	Path string
	v    *viper.Viper
	cfg  Dwh
	mu   sync.Mutex
}

// LoadDwh reads the INI file at path.
func LoadDwh(path string) (*DwhFile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "error reading %v", path)
	}
	f := &DwhFile{Path: path, v: v}
	if err := f.decode(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *DwhFile) decode() error {
	d := Dwh{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true, // INI values are all strings
		Result:           &d,
	})
	if err != nil {
		return err
	}
	if err = dec.Decode(f.v.AllSettings()); err != nil {
		return errors.Wrapf(err, "error decoding %v", f.Path)
	}
	f.cfg = d
	return nil
}

// Config returns a copy of the decoded file.
func (f *DwhFile) Config() Dwh {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

// UpdateSection sets each key in values under section and persists the file.
// Section case, key order and comments are kept. Unknown keys are appended in lower case.
func (f *DwhFile) UpdateSection(section string, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	section = strings.TrimSpace(section)
	if section == "" {
		return errors.New("missing section name")
	}
	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true, PreserveSurroundedQuote: true}, f.Path)
	if err != nil {
		return errors.Wrapf(err, "error reading %v", f.Path)
	}
	sec := findSection(file, section)
	if sec == nil {
		if sec, err = file.NewSection(section); err != nil {
			return errors.Wrapf(err, "error adding section %v", section)
		}
	}
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names) // new keys are appended in a stable order
	for _, k := range names {
		if key := findKey(sec, k); key != nil {
			key.SetValue(values[k])
		} else if _, err = sec.NewKey(strings.ToLower(k), values[k]); err != nil {
			return errors.Wrapf(err, "error adding key %v.%v", section, k)
		}
	}
	if err = file.SaveTo(f.Path); err != nil {
		return errors.Wrapf(err, "error writing %v", f.Path)
	}
	if err = f.v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "error reading %v", f.Path)
	}
	return f.decode()
}

// findSection matches name case-insensitively, as viper does when reading.
func findSection(file *ini.File, name string) *ini.Section {
	for _, s := range file.Sections() {
		if strings.EqualFold(s.Name(), name) {
			return s
		}
	}
	return nil
}

func findKey(sec *ini.Section, name string) *ini.Key {
	for _, k := range sec.Keys() {
		if strings.EqualFold(k.Name(), name) {
			return k
		}
	}
	return nil
}

// Validate checks the keys needed to manage the cluster.
func (d Dwh) Validate() error {
	return helper.ValidateStructIsPopulated(d)
}
