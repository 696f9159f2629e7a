package shared

import (
	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/constants"
)

// AwsConnectionDetails holds the keys an aws connection stores.
// Without keys the SDK default credential chain is used.
type AwsConnectionDetails struct {
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
	Region          string `errorTxt:"AWS region" mandatory:"yes"`
}

func (a *AwsConnectionDetails) Parse() error {
	if (a.AccessKeyId == "") != (a.SecretAccessKey == "") {
		return errors.New("supply both the access key id and the secret access key, or neither")
	}
	if a.Region == "" {
		return errors.New("AWS region not found")
	}
	return nil
}

func (a *AwsConnectionDetails) GetScheme() (string, error) {
	return constants.ConnectionTypeAws, nil
}

func (a *AwsConnectionDetails) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[DefaultConnectionKeyNames.AccessKeyId] = a.AccessKeyId
	m[DefaultConnectionKeyNames.SecretAccessKey] = a.SecretAccessKey
	m[DefaultConnectionKeyNames.Region] = a.Region
	if a.SessionToken != "" {
		m[DefaultConnectionKeyNames.SessionToken] = a.SessionToken
	}
	return m
}

// GetAwsConnectionDetails converts generic ConnectionDetails to AwsConnectionDetails.
func GetAwsConnectionDetails(c *ConnectionDetails) *AwsConnectionDetails {
	return &AwsConnectionDetails{
		AccessKeyId:     c.Data[DefaultConnectionKeyNames.AccessKeyId],
		SecretAccessKey: c.Data[DefaultConnectionKeyNames.SecretAccessKey],
		SessionToken:    c.Data[DefaultConnectionKeyNames.SessionToken],
		Region:          c.Data[DefaultConnectionKeyNames.Region],
	}
}
