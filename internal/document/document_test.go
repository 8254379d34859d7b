package document

import (
	"archive/zip"
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/config"
	"resumatch/internal/errors"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"utf8", []byte("Résumé – Go engineer"), "Résumé – Go engineer"},
		{"utf8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("Hello")...), "Hello"},
		{"latin1", []byte{'C', 'a', 'f', 0xE9, ' ', 'M', 0xFC, 'n', 'c', 'h', 'e', 'n'}, "Café München"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeText(tt.input))
		})
	}
}

func TestExtractDocx(t *testing.T) {
	body := `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">- Built APIs </w:t></w:r><w:r><w:t>in Go &amp; Python</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Skills</w:t><w:tab/><w:t>Kubernetes</w:t></w:r></w:p>`

	text, err := Extract("resume.docx", buildDocx(t, body))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n- Built APIs in Go & Python\nSkills\tKubernetes", text)
}

func TestExtractInvalidDocuments(t *testing.T) {
	for _, name := range []string{"resume.docx", "resume.pdf"} {
		t.Run(name, func(t *testing.T) {
			_, err := Extract(name, []byte("definitely not a document"))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
		})
	}
}

func TestExtractUnsupported(t *testing.T) {
	_, err := Extract("photo.png", []byte{0x89, 'P', 'N', 'G'})
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeUnsupportedFile, appErr.Code)
}

func TestLoaderLocal(t *testing.T) {
	loader := NewLoader(DefaultMaxFileSize, nil, nil)

	t.Run("text file", func(t *testing.T) {
		path := writeFile(t, "resume.txt", []byte("- Built payment services in Go"))
		text, err := loader.Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "- Built payment services in Go", text)
	})

	t.Run("docx file", func(t *testing.T) {
		path := writeFile(t, "resume.docx", buildDocx(t, `<w:p><w:r><w:t>Hello</w:t></w:r></w:p>`))
		text, err := loader.Load(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "Hello", text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "resume.exe"))
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrCodeUnsupportedFile, appErr.Code)
	})

	t.Run("too large", func(t *testing.T) {
		small := NewLoader(8, nil, nil)
		path := writeFile(t, "resume.txt", []byte("more than eight bytes"))
		_, err := small.Load(context.Background(), path)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrCodeFileTooLarge, appErr.Code)
	})
}

func TestLoadAllKeepsOrder(t *testing.T) {
	loader := NewLoader(0, nil, nil)
	first := writeFile(t, "a.txt", []byte("first"))
	second := writeFile(t, "b.md", []byte("second"))

	texts, err := loader.LoadAll(context.Background(), first, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, texts)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://resumes/2024/jane.pdf")
	require.NoError(t, err)
	assert.Equal(t, "resumes", bucket)
	assert.Equal(t, "2024/jane.pdf", key)

	for _, bad := range []string{"s3://bucket-only", "s3:///key.txt", "https://example.com/a.txt"} {
		_, _, err := ParseS3URI(bad)
		assert.Error(t, err, bad)
	}

	assert.True(t, IsS3URI("S3://bucket/key"))
	assert.False(t, IsS3URI("/tmp/s3/resume.txt"))
}

type fakeS3 struct {
	objects map[string]string
	err     error
	input   *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	body := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func TestS3Region(t *testing.T) {
	assert.Equal(t, "", s3Region(config.S3Config{}))
	assert.Equal(t, "eu-west-1", s3Region(config.S3Config{Region: "eu-west-1"}))
	assert.Equal(t, "auto", s3Region(config.S3Config{Endpoint: "https://r2.example.com"}))
	assert.Equal(t, "us-east-2", s3Region(config.S3Config{Region: "us-east-2", Endpoint: "https://minio.local"}))
}

func TestS3Fetcher(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"jobs/backend.md": "Senior Go engineer wanted"}}
	loader := NewLoader(DefaultMaxFileSize, &S3Fetcher{client: fake}, nil)

	text, err := loader.Load(context.Background(), "s3://jobs/backend.md")
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer wanted", text)
	assert.Equal(t, "jobs", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "backend.md", aws.ToString(fake.input.Key))

	t.Run("too large", func(t *testing.T) {
		small := NewLoader(4, &S3Fetcher{client: fake}, nil)
		_, err := small.Load(context.Background(), "s3://jobs/backend.md")
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrCodeFileTooLarge, appErr.Code)
	})

	t.Run("backend failure", func(t *testing.T) {
		failing := NewLoader(0, &S3Fetcher{client: &fakeS3{err: stderrors.New("access denied")}}, nil)
		_, err := failing.Load(context.Background(), "s3://jobs/backend.md")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	})

	t.Run("unsupported key is rejected before download", func(t *testing.T) {
		counting := &fakeS3{objects: map[string]string{}}
		_, err := NewLoader(0, &S3Fetcher{client: counting}, nil).Load(context.Background(), "s3://jobs/archive.zip")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		assert.Nil(t, counting.input)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewLoader(0, nil, nil).Load(context.Background(), "s3://jobs/backend.md")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	})
}
