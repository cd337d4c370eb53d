package dataset

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/boxcheck/internal/model"
)

func plain(words ...string) model.Example {
	labels := make([]model.Label, len(words))
	for i := range labels {
		labels[i] = model.LabelO
	}
	return model.Example{Text: words, Labels: labels}
}

func TestWrite_Format(t *testing.T) {
	ex := model.Example{
		Text:   []string{"Calderón", "scored", "<b>", "\"20\""},
		Labels: []model.Label{model.LabelName, model.LabelO, model.LabelO, model.LabelNumber},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []model.Example{ex}))

	want := `{
    "data": [
        {
            "text": ["Calderón", "scored", "<b>", "\"20\""],
            "labels": ["NAME", "O", "O", "NUMBER"]
        }
    ]
}`
	assert.Equal(t, want, buf.String())
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write[model.Example](&buf, nil))
	assert.Equal(t, "{\n    \"data\": []\n}", buf.String())

	got, err := Read[model.Example](&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRoundTrip_ByteStable(t *testing.T) {
	items := []model.RetrievalExample{
		{
			Ctx:    []string{"The", "Heat", "scored", "99", "points", "."},
			Sent:   []string{"Miami", "won", "."},
			Labels: []model.Label{model.LabelO, model.LabelWord, model.LabelO},
		},
		{
			Ctx:    []string{"José", "had", "7", "assists"},
			Sent:   []string{"José", "had", "9", "assists"},
			Labels: []model.Label{model.LabelO, model.LabelO, model.LabelNumber, model.LabelO},
		},
	}

	var first bytes.Buffer
	require.NoError(t, Write(&first, items))

	back, err := Read[model.RetrievalExample](bytes.NewReader(first.Bytes()))
	require.NoError(t, err)
	if diff := cmp.Diff(items, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	var second bytes.Buffer
	require.NoError(t, Write(&second, back))
	assert.Equal(t, first.String(), second.String())
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read[model.Example](bytes.NewReader([]byte(`{"data": [`)))
	assert.Error(t, err)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantPlain, v)

	v, err = ParseVariant("retrieval")
	require.NoError(t, err)
	assert.Equal(t, VariantRetrieval, v)

	_, err = ParseVariant("jsonl")
	assert.Error(t, err)
}

func TestShardFiles_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"train-100-200.json", "train-20-100.json", "train-0-20.json", "train-extra.json", "valid-0-10.json", "train.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`{"data": []}`), 0o644))
	}

	files, err := ShardFiles(dir, "train")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"train-0-20.json", "train-20-100.json", "train-100-200.json", "train-extra.json"}, names)
}

func TestMergeShards(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "merged")

	require.NoError(t, WriteFile(filepath.Join(dir, "test-10-20.json"), []model.Example{plain("c"), plain("d")}))
	require.NoError(t, WriteFile(filepath.Join(dir, "test-0-10.json"), []model.Example{plain("a"), plain("b")}))
	require.NoError(t, WriteFile(filepath.Join(dir, "test-20-30.json"), []model.Example{}))

	path, n, err := MergeShards[model.Example](context.Background(), MergeOptions{
		Dir:         dir,
		OutDir:      out,
		Prefix:      "test",
		Concurrency: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, filepath.Join(out, "test.json"), path)

	got, err := ReadFile[model.Example](path)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, w := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, w, got[i].Text[0])
	}
}

func TestMergeShards_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := MergeShards[model.Example](context.Background(), MergeOptions{Dir: dir, Prefix: "test"})
	assert.ErrorContains(t, err, "no test-*.json shards")

	_, _, err = MergeShards[model.Example](context.Background(), MergeOptions{Dir: dir})
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "test-0-1.json"), []byte("not json"), 0o644))
	_, _, err = MergeShards[model.Example](context.Background(), MergeOptions{Dir: dir, Prefix: "test"})
	assert.Error(t, err)
}
