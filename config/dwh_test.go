package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

const testDwhCfg = `# Sparkify warehouse settings
[AWS_ACCESS]
aws_access_key_id =
aws_secret_access_key =
aws_region = us-west-2

[IAM_ROLE]
name = dwhRole
arn = arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess
redshift_arn =

# cluster settings
[CLUSTER]
dwh_cluster_type = multi-node
node_type = dc2.large
node_count = 4
cluster_identifier = dwhCluster
db_name = dwh
db_user = dwhuser
# keep this secret
db_password = Passw0rd
db_port = 5439
host =

[S3]
bucket = udacity-dend
log_key = log_data
song_key = song_data
log_jsonpath = s3://udacity-dend/log_json_path.json
region = us-west-2
`

func writeDwh(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "dwh.cfg")
	if err := os.WriteFile(p, []byte(testDwhCfg), 0600); err != nil {
		t.Fatal(err)
	}
	return p
}

func mustLoadDwh(t *testing.T, p string) *DwhFile {
	t.Helper()
	f, err := LoadDwh(p)
	if err != nil {
		t.Fatalf("unable to load %v: %v", p, err)
	}
	return f
}

func TestLoadDwh(t *testing.T) {
	d := mustLoadDwh(t, writeDwh(t)).Config()
	if d.AwsAccess.Region != "us-west-2" || d.IamRole.Name != "dwhRole" || d.Cluster.ClusterType != "multi-node" {
		t.Fatalf("unexpected config decoded: %+v", d)
	}
	if d.Cluster.NodeCount != 4 || d.Cluster.DbPort != 5439 {
		t.Fatalf("expected node_count 4 and db_port 5439; got %v and %v", d.Cluster.NodeCount, d.Cluster.DbPort)
	}
	if d.S3.Bucket != "udacity-dend" || d.S3.LogJsonPath != "s3://udacity-dend/log_json_path.json" {
		t.Fatalf("unexpected S3 section: %+v", d.S3)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected valid config; got %v", err)
	}
	d.Cluster.Identifier = ""
	err := d.Validate()
	if err == nil || !strings.Contains(err.Error(), "CLUSTER.cluster_identifier") {
		t.Fatalf("expected error naming CLUSTER.cluster_identifier; got %v", err)
	}
}

func TestLoadDwhMissingFile(t *testing.T) {
	if _, err := LoadDwh(filepath.Join(t.TempDir(), "nope.cfg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestUpdateSectionPersists(t *testing.T) {
	p := writeDwh(t)
	f := mustLoadDwh(t, p)
	host := "dwhcluster.abc.us-west-2.redshift.amazonaws.com"
	if err := f.UpdateSection(SectionCluster, map[string]string{"HOST": host}); err != nil {
		t.Fatal(err)
	}
	if got := f.Config().Cluster.Host; got != host {
		t.Fatalf("expected host %v; got %v", host, got)
	}
	again := mustLoadDwh(t, p).Config()
	if again.Cluster.Host != host || again.IamRole.Name != "dwhRole" {
		t.Fatalf("unexpected config after reload: %+v", again)
	}
	if err := f.UpdateSection(" ", map[string]string{"a": "b"}); err == nil {
		t.Fatal("expected error for blank section")
	}
}

func TestUpdateSectionKeepsLayout(t *testing.T) {
	p := writeDwh(t)
	f := mustLoadDwh(t, p)
	if err := f.UpdateSection("iam_role", map[string]string{"redshift_arn": "arn:aws:iam::123:role/dwhRole"}); err != nil {
		t.Fatal(err)
	}
	if err := f.UpdateSection(SectionCluster, map[string]string{"host": "dwh.example.com"}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	// Sections keep their case and order.
	last := -1
	for _, s := range []string{"[AWS_ACCESS]", "[IAM_ROLE]", "[CLUSTER]", "[S3]"} {
		i := strings.Index(out, s)
		if i < 0 || i < last {
			t.Fatalf("expected section %v in original position; got:\n%v", s, out)
		}
		last = i
	}
	for _, s := range []string{"[aws_access]", "[iam_role]", "[cluster]", "[s3]"} {
		if strings.Contains(out, s) {
			t.Fatalf("unexpected lower case section %v in:\n%v", s, out)
		}
	}
	for _, s := range []string{"# Sparkify warehouse settings", "# cluster settings", "# keep this secret"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected comment %q to survive; got:\n%v", s, out)
		}
	}
	for _, re := range []string{
		`redshift_arn\s*=\s*arn:aws:iam::123:role/dwhRole`,
		`host\s*=\s*dwh\.example\.com`,
		`cluster_identifier\s*=\s*dwhCluster`,
		`db_password\s*=\s*Passw0rd`,
		`(?s)dwh_cluster_type.*node_type.*db_port.*host`,
	} {
		if !regexp.MustCompile(re).MatchString(out) {
			t.Fatalf("expected %v to match:\n%v", re, out)
		}
	}
	// A new key is appended to an existing section.
	if err := f.UpdateSection(SectionS3, map[string]string{"Extra_Key": "x"}); err != nil {
		t.Fatal(err)
	}
	b, _ = os.ReadFile(p)
	if !regexp.MustCompile(`extra_key\s*=\s*x`).Match(b) || strings.Count(string(b), "[S3]") != 1 {
		t.Fatalf("expected extra_key under the single S3 section; got:\n%s", b)
	}
}

func TestImportCredentialsCsv(t *testing.T) {
	f := mustLoadDwh(t, writeDwh(t))
	csvPath := filepath.Join(t.TempDir(), "new_user_credentials.csv")
	csvBody := "User name,Password,Access key ID,Secret access key,Console login link\n" +
		"dwhadmin,,AKIAEXAMPLE,wJalrXUtnFEMI/K7MDENG,https://example.signin.aws.amazon.com/console\n"
	if err := os.WriteFile(csvPath, []byte(csvBody), 0600); err != nil {
		t.Fatal(err)
	}
	if err := ImportCredentialsCsv(csvPath, f); err != nil {
		t.Fatal(err)
	}
	a := f.Config().AwsAccess
	if a.AccessKeyId != "AKIAEXAMPLE" || a.SecretAccessKey != "wJalrXUtnFEMI/K7MDENG" {
		t.Fatalf("unexpected AWS_ACCESS after import: %+v", a)
	}
}

func TestReadCredentialsCsvErrors(t *testing.T) {
	if _, _, err := ReadCredentialsCsv(strings.NewReader("Access key ID,Secret access key\n")); err == nil {
		t.Fatal("expected error for file without data rows")
	}
	if _, _, err := ReadCredentialsCsv(strings.NewReader("Key,Secret\na,b\n")); err == nil {
		t.Fatal("expected error for missing columns")
	}
	k, s, err := ReadCredentialsCsv(strings.NewReader("\ufeffAccess key ID,Secret access key\n a , b \n"))
	if err != nil {
		t.Fatal(err)
	}
	if k != "a" || s != "b" {
		t.Fatalf("expected trimmed key and secret; got %q, %q", k, s)
	}
}
