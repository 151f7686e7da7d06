package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/schema"
)

func TestCheckFiles(t *testing.T) {
	q := schema.Question{Code: "id_document", Filetype: []string{".pdf", "image/*"}, MaxFileSize: 1, MaxFilesAllowed: 2}
	pdf := answers.File{Name: "id.pdf", Size: 1024, Type: "application/pdf"}
	png := answers.File{Name: "scan.png", Size: 2048, Type: "image/png"}

	cases := []struct {
		name  string
		files []answers.File
		want  string
	}{
		{name: "accepted", files: []answers.File{pdf, png}},
		{name: "too many", files: []answers.File{pdf, png, pdf}, want: "Maximum 2 files allowed"},
		{name: "too large", files: []answers.File{{Name: "big.pdf", Size: 2 << 20}}, want: "less than 1MB"},
		{name: "wrong type", files: []answers.File{{Name: "run.exe", Size: 10, Type: "application/x-msdownload"}}, want: "application/x-msdownload is not accepted"},
		{name: "unknown type labelled by name", files: []answers.File{{Name: "notes", Size: 10}}, want: "notes is not accepted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckFiles(q, tc.files, nil)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected rejection: %v", err)
				}
				return
			}
			var rej *Rejection
			if !errors.As(err, &rej) {
				t.Fatalf("expected rejection, got %v", err)
			}
			if !strings.Contains(rej.Message, tc.want) {
				t.Fatalf("message = %q, want %q", rej.Message, tc.want)
			}
		})
	}
}
