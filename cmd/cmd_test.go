package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/lehigh-university-libraries/ddimport/format/ddi"
)

const studyXML = `<codeBook ID="KEN_2019_HHS">
  <stdyDscr>
    <citation>
      <titlStmt><titl>Household Survey 2019</titl></titlStmt>
      <prodStmt><prodDate date="2019-06-30">June 2019</prodDate></prodStmt>
    </citation>
    <stdyInfo><subject><keyword>Health</keyword></subject></stdyInfo>
    <method><dataColl><collMode>Face-to-face [f2f]</collMode></dataColl></method>
  </stdyDscr>
</codeBook>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--config", writeFile(t, "config.yaml", "{}\n")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVocab(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr string
	}{
		{
			name: "choice fields",
			args: []string{"vocab"},
			want: []string{"FIELD", "keywords", "data_collection_technique"},
		},
		{
			name: "field values",
			args: []string{"vocab", "keywords"},
			want: []string{"VALUE", "11", "Health"},
		},
		{
			name:    "unknown field",
			args:    []string{"vocab", "colour"},
			wantErr: "unknown field \"colour\" (fields: title, name",
		},
		{
			name:    "field without vocabulary",
			args:    []string{"vocab", "title"},
			wantErr: "has no vocabulary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, tt.args...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestValidateDetectsFormat(t *testing.T) {
	input := writeFile(t, "study.xml", studyXML)

	out, err := runCommand(t, "validate", "-i", input)
	if err != nil {
		t.Fatalf("validate error = %v\n%s", err, out)
	}

	for _, want := range []string{
		"Format: ddi (",
		"Name: ken-2019-hhs",
		"Data collection technique: f2f",
		"Extra fields: production_date",
		"No issues found.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateUnknownFormat(t *testing.T) {
	input := writeFile(t, "notes.txt", "plain text notes")

	_, err := runCommand(t, "validate", "-i", input)
	if err == nil {
		t.Fatal("validate error = nil, want format detection error")
	}
	if !strings.Contains(err.Error(), "available formats: ddi") {
		t.Errorf("error = %v", err)
	}
}
