package linkcheck

import (
	"bytes"

	"golang.org/x/net/html"
)

// htmlTargets extracts href/src references from HTML embedded in a record
// body. The parser is lenient, so MDX component tags pass through as
// unknown elements without contributing references.
func htmlTargets(body []byte) []string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var targets []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if ref := elementTarget(n); ref != "" {
				targets = append(targets, ref)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return targets
}

func elementTarget(n *html.Node) string {
	switch n.Data {
	case "a", "link":
		return getAttr(n, "href")
	case "img", "script", "video", "audio", "source", "iframe":
		return getAttr(n, "src")
	}
	return ""
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
