package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
		Tables     []docxTable     `xml:"tbl"`
	} `xml:"body"`
}

type docxTable struct {
	Rows []struct {
		Cells []struct {
			Paragraphs []docxParagraph `xml:"p"`
		} `xml:"tc"`
	} `xml:"tr"`
}

// docxParagraph collects the text runs of a w:p element in document order.
type docxParagraph struct {
	Text string
}

func (p *docxParagraph) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var b strings.Builder
	inText := false
	depth := 0

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				depth++
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if depth == 0 {
					p.Text = b.String()
					return nil
				}
				depth--
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}

// ReadDocx returns the body paragraphs, one per line, followed by every
// table row with its cells separated by spaces.
func ReadDocx(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open docx %s: %w", path, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if f.Name != docxBodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s in %s: %w", docxBodyPart, path, err)
		}
		defer func() { _ = rc.Close() }()

		return parseDocx(rc)
	}

	return "", fmt.Errorf("%w: %s has no %s", ErrUnsupportedFormat, path, docxBodyPart)
}

func parseDocx(r io.Reader) (string, error) {
	var doc docxDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: empty document body", ErrUnsupportedFormat)
		}
		return "", fmt.Errorf("failed to parse docx body: %w", err)
	}

	var b strings.Builder
	for _, p := range doc.Body.Paragraphs {
		b.WriteString(p.Text)
		b.WriteByte('\n')
	}

	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			for _, cell := range row.Cells {
				texts := make([]string, len(cell.Paragraphs))
				for i, p := range cell.Paragraphs {
					texts[i] = p.Text
				}
				b.WriteString(strings.Join(texts, "\n"))
				b.WriteByte(' ')
			}
			b.WriteByte('\n')
		}
	}

	return b.String(), nil
}
