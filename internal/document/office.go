package document

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Both .docx and .odt are zip archives holding a single content XML
// document. Text extraction walks the paragraph elements and collects
// character data, one line per paragraph.

func readDocx(path string) (string, error) {
	return readZippedXML(path, "word/document.xml", "p", "t")
}

func readODT(path string) (string, error) {
	return readZippedXML(path, "content.xml", "p", "")
}

// readZippedXML opens the named XML entry inside the zip at path and
// joins the text content of every <paragraph> element. When textLocal is
// non-empty, only character data inside elements with that local name is
// collected (Word nests runs in <w:t>); otherwise all character data
// within the paragraph counts (OpenDocument).
func readZippedXML(path, entry, paragraphLocal, textLocal string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()

	var content io.ReadCloser
	for _, f := range zr.File {
		if f.Name == entry {
			content, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("opening %s in %s: %w", entry, path, err)
			}
			break
		}
	}
	if content == nil {
		return "", fmt.Errorf("%s: missing %s", path, entry)
	}
	defer content.Close()

	dec := xml.NewDecoder(content)
	var (
		paragraphs []string
		current    strings.Builder
		pDepth     int
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing %s in %s: %w", entry, path, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case paragraphLocal:
				pDepth++
			case textLocal:
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case paragraphLocal:
				pDepth--
				if pDepth == 0 {
					paragraphs = append(paragraphs, strings.TrimSpace(current.String()))
					current.Reset()
				}
			case textLocal:
				inText = false
			}
		case xml.CharData:
			if pDepth > 0 && (textLocal == "" || inText) {
				current.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
