// Package render builds an HTML page for reviewing predicted error spans
// against gold annotations, token by token.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/boxcheck/internal/annotate"
	"github.com/ppiankov/boxcheck/internal/gamedata"
	"github.com/ppiankov/boxcheck/internal/model"
)

// Mark classifies a token against gold (reference) and predicted (hypothesis) labels
type Mark string

const (
	MarkNone      Mark = ""
	MarkMissed    Mark = "missed"    // Gold only
	MarkExtra     Mark = "extra"     // Predicted only
	MarkCorrect   Mark = "correct"   // Both, same type
	MarkIncorrect Mark = "incorrect" // Both, different type
)

// Document is one text on the review page
type Document struct {
	TextID string
	Tokens []string // Whitespace tokens of the text
	Gold   []model.Annotation
	Pred   []model.Annotation
	Title  string // Home vs visitors, date
	Link   string // Box score URL
}

// TokenMark is the review state of one token
type TokenMark struct {
	Token string
	Mark  Mark
	Tag   string // Type caption, "r:" for gold and "h:" for predicted
}

// Marks compares gold and predicted types per document token
func (d Document) Marks() []TokenMark {
	gold := spread(d.Gold, len(d.Tokens))
	pred := spread(d.Pred, len(d.Tokens))

	marks := make([]TokenMark, len(d.Tokens))
	for i, tok := range d.Tokens {
		m := TokenMark{Token: tok}
		g, p := gold[i], pred[i]
		switch {
		case g == "" && p == "":
		case p == "":
			m.Mark, m.Tag = MarkMissed, "r:"+string(g)
		case g == "":
			m.Mark, m.Tag = MarkExtra, "h:"+string(p)
		case g != p:
			m.Mark, m.Tag = MarkIncorrect, "r:"+string(g)+" h:"+string(p)
		default:
			m.Mark, m.Tag = MarkCorrect, string(g)
		}
		marks[i] = m
	}
	return marks
}

// spread assigns each annotation's type to its 1-indexed document positions
func spread(annos []model.Annotation, n int) []model.Label {
	out := make([]model.Label, n)
	for _, a := range annos {
		for p := a.DocStart; p <= a.DocEnd; p++ {
			if p >= 1 && p <= n {
				out[p-1] = a.Type
			}
		}
	}
	return out
}

// LoadTexts reads every .txt file of dir, keyed by file name. Lines are
// joined with spaces.
func LoadTexts(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read texts: %w", err)
	}

	texts := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		texts[e.Name()] = strings.TrimSpace(strings.Join(strings.Split(string(data), "\n"), " "))
	}
	return texts, nil
}

// Documents pairs texts with their annotations and game metadata, sorted by text id
func Documents(texts map[string]string, gold, pred []model.Annotation, games []gamedata.GameText) []Document {
	byDoc := func(annos []model.Annotation) map[string][]model.Annotation {
		m := make(map[string][]model.Annotation)
		for _, a := range annos {
			m[annotate.DocID(a.TextID)] = append(m[annotate.DocID(a.TextID)], a)
		}
		return m
	}
	goldBy, predBy := byDoc(gold), byDoc(pred)

	meta := make(map[string]gamedata.GameText, len(games))
	for _, g := range games {
		meta[annotate.DocID(g.TextID)] = g
	}

	ids := make([]string, 0, len(texts))
	for id := range texts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc := annotate.DocID(id)
		d := Document{
			TextID: id,
			Tokens: strings.Fields(texts[id]),
			Gold:   goldBy[doc],
			Pred:   predBy[doc],
		}
		if g, ok := meta[doc]; ok {
			d.Title = fmt.Sprintf("%s vs %s, %s", g.Extra["HOME_NAME"], g.Extra["VIS_NAME"], g.Extra["DATE"])
			d.Link = g.Extra["BREF_BOX"]
		}
		docs = append(docs, d)
	}
	return docs
}

const style = `
body { max-width: 60em; padding-left: 5em; }
.id { margin-top: 2em; font-weight: bold; font-size: 14pt; }
.text { line-height: 3em; }
.missed, .correct, .incorrect, .extra { display: inline-block; color: #800; vertical-align: middle; line-height: 1em; }
.missed { background: #faa; }
.correct { background: #46db78; }
.incorrect { background: #db9bf2; }
.extra { background: #fa5; }
.type { color: white; font-size: 8pt; display: block; }
`

// Page builds the review page
func Page(docs []Document) *html.Node {
	head := element(atom.Head, nil,
		element(atom.Meta, []html.Attribute{{Key: "charset", Val: "utf-8"}}),
		element(atom.Title, nil, text("Error annotation")),
		element(atom.Style, nil, text(style)),
	)

	body := element(atom.Body, nil)
	for _, d := range docs {
		heading := element(atom.Div, class("id"), text(d.TextID+": "))
		if d.Title != "" {
			link := element(atom.A, nil, text(d.Title))
			if d.Link != "" {
				link.Attr = []html.Attribute{{Key: "href", Val: d.Link}}
			}
			heading.AppendChild(link)
		}
		body.AppendChild(heading)

		para := element(atom.Div, class("text"))
		for i, m := range d.Marks() {
			if i > 0 {
				para.AppendChild(text(" "))
			}
			if m.Mark == MarkNone {
				para.AppendChild(text(m.Token))
				continue
			}
			para.AppendChild(element(atom.Div, class(string(m.Mark)),
				element(atom.Span, class("type"), text(m.Tag)),
				text(m.Token),
			))
		}
		body.AppendChild(para)
	}

	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root.AppendChild(element(atom.Html, nil, head, body))
	return root
}

// Write renders the review page to w
func Write(w io.Writer, docs []Document) error {
	if err := html.Render(w, Page(docs)); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func class(c string) []html.Attribute {
	return []html.Attribute{{Key: "class", Val: c}}
}
