package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/ppiankov/boxcheck/internal/gamedata"
	"github.com/ppiankov/boxcheck/internal/model"
)

func span(start, end int, typ model.Label) model.Annotation {
	return model.Annotation{TextID: "g1.txt", DocStart: start, DocEnd: end, Type: typ}
}

func TestMarks(t *testing.T) {
	d := Document{
		Tokens: strings.Fields("Smith scored 20 points on Monday in Boston ."),
		Gold: []model.Annotation{
			span(1, 1, model.LabelName),
			span(3, 3, model.LabelNumber),
			span(6, 6, model.LabelName),
		},
		Pred: []model.Annotation{
			span(3, 3, model.LabelNumber),
			span(6, 6, model.LabelWord),
			span(8, 10, model.LabelName), // Runs past the last token
		},
	}

	marks := d.Marks()
	require.Len(t, marks, 9)

	tests := []struct {
		pos  int
		mark Mark
		tag  string
	}{
		{0, MarkMissed, "r:NAME"},
		{1, MarkNone, ""},
		{2, MarkCorrect, "NUMBER"},
		{5, MarkIncorrect, "r:NAME h:WORD"},
		{7, MarkExtra, "h:NAME"},
		{8, MarkExtra, "h:NAME"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.mark, marks[tt.pos].Mark, "token %d", tt.pos)
		assert.Equal(t, tt.tag, marks[tt.pos].Tag, "token %d", tt.pos)
	}
}

func TestDocuments(t *testing.T) {
	texts := map[string]string{
		"b.txt": "Heat won .",
		"a.txt": "Celtics lost by 7 .",
	}
	gold := []model.Annotation{{TextID: "a.txt", DocStart: 4, DocEnd: 4, Type: model.LabelNumber}}
	pred := []model.Annotation{{TextID: "b.txt", DocStart: 1, DocEnd: 1, Type: model.LabelName}}
	games := []gamedata.GameText{{
		TextID: "a",
		Extra: map[string]string{
			"HOME_NAME": "Celtics",
			"VIS_NAME":  "Heat",
			"DATE":      "2014-11-03",
			"BREF_BOX":  "https://example.com/box/a",
		},
	}}

	docs := Documents(texts, gold, pred, games)
	require.Len(t, docs, 2)

	assert.Equal(t, "a.txt", docs[0].TextID)
	assert.Equal(t, "Celtics vs Heat, 2014-11-03", docs[0].Title)
	assert.Equal(t, "https://example.com/box/a", docs[0].Link)
	assert.Len(t, docs[0].Gold, 1)
	assert.Empty(t, docs[0].Pred)

	assert.Equal(t, "b.txt", docs[1].TextID)
	assert.Empty(t, docs[1].Title)
	assert.Len(t, docs[1].Pred, 1)
}

// marked collects the text of every element carrying a review class
func marked(n *html.Node) map[string][]string {
	out := make(map[string][]string)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" {
			for _, a := range n.Attr {
				if a.Key != "class" {
					continue
				}
				switch a.Val {
				case "missed", "extra", "correct", "incorrect":
					if last := n.LastChild; last != nil && last.Type == html.TextNode {
						out[a.Val] = append(out[a.Val], last.Data)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func TestWrite(t *testing.T) {
	docs := []Document{{
		TextID: "g1.txt",
		Tokens: []string{"<Smith>", "scored", "20", "&", "7"},
		Gold:   []model.Annotation{span(3, 3, model.LabelNumber)},
		Pred:   []model.Annotation{span(3, 3, model.LabelNumber), span(5, 5, model.LabelNumber)},
		Title:  "Celtics vs Heat, 2014-11-03",
		Link:   "https://example.com/box",
	}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, docs))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "&lt;Smith&gt;")
	assert.Contains(t, out, `href="https://example.com/box"`)

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	got := marked(doc)
	assert.Equal(t, []string{"20"}, got["correct"])
	assert.Equal(t, []string{"7"}, got["extra"])
	assert.Empty(t, got["missed"])
}

func TestLoadTexts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "g1.txt"), []byte("The Heat won.\nSmith scored 20.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	texts, err := LoadTexts(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"g1.txt": "The Heat won. Smith scored 20."}, texts)

	_, err = LoadTexts(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
