package pinyin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWord(t *testing.T) {
	p := NewParser()

	assert.Equal(t, "shān", p.Word("山"))
	assert.Equal(t, "shān chuān", p.Word("山川"))
	assert.Equal(t, "", p.Word("やま"))
	assert.Equal(t, "shān", p.Word("山さん"))
}

func TestReadings(t *testing.T) {
	p := NewParser()

	assert.Contains(t, p.Readings("行"), "xíng")
	assert.Contains(t, p.Readings("行"), "háng")
	assert.Nil(t, p.Readings("か"))
}

func TestTone(t *testing.T) {
	tests := []struct {
		in   string
		bare string
		tone int
	}{
		{"shān", "shan", 1},
		{"xué", "xue", 2},
		{"hǎo", "hao", 3},
		{"shì", "shi", 4},
		{"de", "de", 5},
		{"lǜ", "lü", 4},
	}
	for _, tt := range tests {
		bare, tone := Tone(tt.in)
		assert.Equal(t, tt.bare, bare, tt.in)
		assert.Equal(t, tt.tone, tone, tt.in)
	}
}

func TestNumbered(t *testing.T) {
	assert.Equal(t, "shan1 chuan1", NewParser().Numbered("山川"))
}
