package document

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
)

func readHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			// Script and style bodies are not transcript text.
			if n.Data == "script" || n.Data == "style" {
				return
			}
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return sb.String(), nil
}
