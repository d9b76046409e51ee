package chunker

import (
	"strings"
	"testing"

	"rag-chatbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "defaults", size: 1000, overlap: 200},
		{name: "no overlap", size: 10, overlap: 0},
		{name: "overlap equals size", size: 10, overlap: 10, wantErr: true},
		{name: "negative overlap", size: 10, overlap: -1, wantErr: true},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.size, tt.overlap)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.size, c.Size())
			assert.Equal(t, tt.overlap, c.Overlap())
		})
	}
}

func TestSplitText_CountAndReconstruction(t *testing.T) {
	c := Default()

	lengths := []int{1, 199, 200, 999, 1000, 1001, 1800, 1801, 2500, 5000, 12345}
	for _, length := range lengths {
		text := makeText(length)
		chunks := c.SplitText(models.Document{Source: "doc.txt", Text: text})

		assert.Len(t, chunks, Count(length, DefaultSize, DefaultOverlap), "length %d", length)
		assert.Equal(t, text, Reconstruct(chunks, DefaultOverlap), "length %d", length)
	}
}

func TestSplitText_SizeAndOverlapInvariants(t *testing.T) {
	c, err := New(100, 30)
	require.NoError(t, err)

	chunks := c.SplitText(models.Document{Source: "a.txt", Text: makeText(1234)})
	require.Greater(t, len(chunks), 1)

	for i, ch := range chunks {
		runes := []rune(ch.Text)
		if i < len(chunks)-1 {
			assert.Len(t, runes, 100)
		} else {
			assert.LessOrEqual(t, len(runes), 100)
		}
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, i*70, ch.Offset)

		if i > 0 {
			prev := []rune(chunks[i-1].Text)
			assert.Equal(t, string(prev[len(prev)-30:]), string(runes[:30]))
		}
	}
}

func TestSplitText_EndToEndShape(t *testing.T) {
	chunks := Default().SplitText(models.Document{Source: "big.txt", Text: makeText(2500)})

	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].Offset)
	assert.Equal(t, 800, chunks[1].Offset)
	assert.Equal(t, 1600, chunks[2].Offset)
	assert.Len(t, []rune(chunks[2].Text), 900)
}

func TestSplitText_Multibyte(t *testing.T) {
	c, err := New(4, 1)
	require.NoError(t, err)

	text := "héllo wörld ✓"
	chunks := c.SplitText(models.Document{Text: text})

	assert.Equal(t, text, Reconstruct(chunks, 1))
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch.Text)), 4)
	}
}

func TestSplitText_Deterministic(t *testing.T) {
	doc := models.Document{Source: "a.txt", Text: makeText(3000)}

	first := Default().SplitText(doc)
	second := Default().SplitText(doc)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Offset, second[i].Offset)
	}
}

func TestSplit_BlankDocumentsAndProvenance(t *testing.T) {
	docs := []models.Document{
		{Source: "a.pdf", Page: 1, Text: "first page"},
		{Source: "a.pdf", Page: 2, Text: "   \n\t "},
		{Source: "b.txt", Text: "second file"},
	}

	chunks := Default().Split(docs)

	require.Len(t, chunks, 2)
	assert.Equal(t, "a.pdf", chunks[0].Source)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, "b.txt", chunks[1].Source)
	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)
}

func TestCount(t *testing.T) {
	tests := []struct {
		length, size, overlap, want int
	}{
		{0, 1000, 200, 0},
		{500, 1000, 200, 1},
		{1000, 1000, 200, 1},
		{1001, 1000, 200, 2},
		{2500, 1000, 200, 3},
		{10, 3, 0, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Count(tt.length, tt.size, tt.overlap), "%+v", tt)
	}
}

func makeText(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789 "
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[(i*7+i/13)%len(alphabet)])
	}
	return b.String()
}
