package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"golang.org/x/text/encoding/charmap"

	"resumatch/internal/errors"
	"resumatch/internal/utils"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extract returns the text of a document, choosing the parser from the
// extension of name. Names without an extension are read as plain text.
func Extract(name string, data []byte) (string, error) {
	switch {
	case utils.IsPDFFile(name):
		return extractPDF(name, data)
	case utils.IsDocxFile(name):
		return extractDocx(name, data)
	case utils.IsTextFile(name):
		return decodeText(data), nil
	default:
		return "", unsupportedDocument(name)
	}
}

func unsupportedDocument(name string) error {
	return errors.NewValidationError(errors.ErrCodeUnsupportedFile,
		fmt.Sprintf("unsupported file type %q: use .txt, .md, .pdf or .docx", utils.GetFileExtension(name)), nil).
		WithContext("file", name)
}

// decodeText reads UTF-8, falling back to Latin-1 for legacy exports.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(decoded)
}

func extractPDF(name string, data []byte) (text string, err error) {
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = invalidDocument(name, "pdf", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", invalidDocument(name, "pdf", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", invalidDocument(name, "pdf", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", invalidDocument(name, "pdf", err)
	}
	return b.String(), nil
}

func extractDocx(name string, data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", invalidDocument(name, "docx", err)
	}
	defer func() { _ = doc.Close() }()

	text, err := wordXMLText(doc.Editable().GetContent())
	if err != nil {
		return "", invalidDocument(name, "docx", err)
	}
	return text, nil
}

// wordXMLText collects the text runs of a WordprocessingML body, one line per paragraph.
func wordXMLText(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var b strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func invalidDocument(name, kind string, cause error) error {
	return errors.NewIOError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("failed to extract text from %s document", kind), cause).
		WithContext("file", name)
}
