package catalog

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

func TestDefault_Shape(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.Monsters(), 15)
	for _, level := range kanji.Levels {
		assert.Len(t, c.MonstersForLevel(level), 3, "monsters for %s", level)
		assert.Len(t, c.QuestionsForLevel(level), 8, "questions for %s", level)
		for _, q := range c.QuestionsForLevel(level) {
			assert.Equal(t, level, q.Level)
			assert.NotEmpty(t, q.Hint, q.Kanji)
		}
	}

	assert.Equal(t, "宇宙", c.DefaultQuestion().Kanji)
}

func TestDefault_MultipleReadings(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	var snail kanji.Question
	for _, q := range c.QuestionsForLevel(kanji.Kyu1) {
		if q.Kanji == "蝸牛" {
			snail = q
		}
	}
	require.NotEmpty(t, snail.ID)
	assert.True(t, snail.IsCorrect("かたつむり"))
	assert.True(t, snail.IsCorrect("デンデンムシ"))
	assert.True(t, snail.IsCorrect("かぎゅう"))
	assert.False(t, snail.IsCorrect("なめくじ"))
}

func TestRandomMonster_StaysInLevel(t *testing.T) {
	c, err := Default(WithSeed(7))
	require.NoError(t, err)

	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		m := c.RandomMonster(kanji.Kyu3)
		assert.Equal(t, kanji.Kyu3, m.Level)
		seen[m.ID] = true
	}
	assert.Len(t, seen, 3, "every kyu3 monster eventually appears")
}

func TestRandomMonster_FallsBackToFirst(t *testing.T) {
	c, err := New(File{
		Monsters:  []kanji.Monster{{ID: 9, Name: "ヌシ", Level: kanji.Kyu2, Color: kanji.ColorGreen}},
		Questions: []kanji.Question{{ID: "q", Kanji: "山", Readings: []string{"やま"}, Level: kanji.Kyu5}},
	})
	require.NoError(t, err)

	assert.Equal(t, 9, c.RandomMonster(kanji.Kyu5).ID)
	assert.Empty(t, c.QuestionsForLevel(kanji.Kyu1))
}

func TestNew_NormalizesReadings(t *testing.T) {
	c, err := New(File{
		Monsters: []kanji.Monster{{ID: 1, Name: "A", Level: kanji.Kyu5, Color: kanji.ColorLime}},
		Questions: []kanji.Question{
			{ID: "q1", Kanji: "薔薇", Readings: []string{" バラ ", "ばら", "ｼｮｳﾋﾞ"}, Level: kanji.Kyu1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ばら", "しょうび"}, c.Questions()[0].Readings)
}

func TestNew_Rejects(t *testing.T) {
	monster := kanji.Monster{ID: 1, Name: "A", Level: kanji.Kyu5, Color: kanji.ColorLime}
	question := kanji.Question{ID: "q1", Kanji: "山", Readings: []string{"やま"}, Level: kanji.Kyu5}

	tests := []struct {
		name string
		file File
	}{
		{"no monsters", File{Questions: []kanji.Question{question}}},
		{"no questions", File{Monsters: []kanji.Monster{monster}}},
		{"blank readings", File{
			Monsters:  []kanji.Monster{monster},
			Questions: []kanji.Question{{ID: "q", Kanji: "山", Readings: []string{"  "}, Level: kanji.Kyu5}},
		}},
		{"bad color", File{
			Monsters:  []kanji.Monster{{ID: 1, Name: "A", Level: kanji.Kyu5, Color: "purple"}},
			Questions: []kanji.Question{question},
		}},
		{"duplicate question", File{
			Monsters:  []kanji.Monster{monster},
			Questions: []kanji.Question{question, question},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.file)
			assert.Error(t, err)
		})
	}

	_, err := New(File{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(strings.NewReader("monsters: []\nbosses: []\n"))
	assert.Error(t, err)
}

func TestSaveLoadFile(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, Save(path, c.File()))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, c.Questions(), loaded.Questions())
	assert.Equal(t, c.Monsters(), loaded.Monsters())
}

func TestMerge(t *testing.T) {
	base := File{
		Monsters:  []kanji.Monster{{ID: 1, Name: "A"}},
		Questions: []kanji.Question{{ID: "a", Kanji: "山"}, {ID: "b", Kanji: "川"}},
	}
	extra := File{
		Monsters:  []kanji.Monster{{ID: 1, Name: "dup"}, {ID: 2, Name: "B"}},
		Questions: []kanji.Question{{ID: "b", Kanji: "河"}, {ID: "c", Kanji: "海"}},
	}

	got := Merge(base, extra)
	require.Len(t, got.Questions, 3)
	assert.Equal(t, "河", got.Questions[1].Kanji)
	assert.Equal(t, "海", got.Questions[2].Kanji)
	require.Len(t, got.Monsters, 2)
	assert.Equal(t, "A", got.Monsters[0].Name)
}
