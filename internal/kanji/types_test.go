package kanji

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_Neighbors(t *testing.T) {
	for _, l := range Levels {
		if easier, ok := l.Easier(); ok {
			back, ok := easier.Harder()
			require.True(t, ok)
			assert.Equal(t, l, back, "harder(easier(%s))", l)
		}
		if harder, ok := l.Harder(); ok {
			back, ok := harder.Easier()
			require.True(t, ok)
			assert.Equal(t, l, back, "easier(harder(%s))", l)
		}
	}

	_, ok := Kyu1.Harder()
	assert.False(t, ok, "1 kyu has no harder neighbor")
	_, ok = Kyu5.Easier()
	assert.False(t, ok, "5 kyu has no easier neighbor")
}

func TestLevel_OrderingIsStrict(t *testing.T) {
	for i := 1; i < len(Levels); i++ {
		assert.True(t, Levels[i].HarderThan(Levels[i-1]))
		assert.False(t, Levels[i-1].HarderThan(Levels[i]))
		assert.Greater(t, Levels[i].ScoreMultiplier(), Levels[i-1].ScoreMultiplier())
	}
}

func TestLevel_Label(t *testing.T) {
	assert.Equal(t, "5級", Kyu5.Label())
	assert.Equal(t, "1級", Kyu1.String())
	assert.Equal(t, 1, Kyu5.ScoreMultiplier())
	assert.Equal(t, 5, Kyu1.ScoreMultiplier())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "5", want: Kyu5},
		{in: "3級", want: Kyu3},
		{in: "1kyu", want: Kyu1},
		{in: "0", wantErr: true},
		{in: "6", wantErr: true},
		{in: "hard", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuestion_IsCorrect(t *testing.T) {
	q := Question{ID: "k3-001", Kanji: "向日葵", Readings: []string{"ひまわり"}, Level: Kyu3}

	assert.True(t, q.IsCorrect("ひまわり"))
	assert.True(t, q.IsCorrect("ヒマワリ"))
	assert.True(t, q.IsCorrect("  ひまわり\n"))
	assert.True(t, q.IsCorrect("ﾋﾏﾜﾘ"), "half-width katakana folds to hiragana")
	assert.False(t, q.IsCorrect("ひまわ"))
	assert.False(t, q.IsCorrect(""))
	assert.False(t, q.IsCorrect("   "))
}

func TestQuestion_IsCorrectMultipleReadings(t *testing.T) {
	q := Question{ID: "k3-002", Kanji: "紅葉", Readings: []string{"もみじ", "こうよう"}, Level: Kyu3}

	assert.True(t, q.IsCorrect("もみじ"))
	assert.True(t, q.IsCorrect("コウヨウ"))
	assert.False(t, q.IsCorrect("べにば"))
}

func TestNormalizeReading(t *testing.T) {
	assert.Equal(t, "ひまわり", NormalizeReading("ヒマワリ"))
	assert.Equal(t, "ばら", NormalizeReading("ﾊﾞﾗ"))
	assert.Equal(t, "れもん", NormalizeReading("レモン"))
	assert.Equal(t, "abc", NormalizeReading("ＡＢＣ"))
	assert.Equal(t, "らーめん", NormalizeReading("ラーメン"))

	once := NormalizeReading("カタツムリ")
	assert.Equal(t, once, NormalizeReading(once), "normalization is idempotent")
}

func TestQuestion_FallbackHint(t *testing.T) {
	q := Question{ID: "k5-001", Kanji: "宇宙", Readings: []string{"うちゅう"}, Hint: "星がいっぱいの広い場所", Level: Kyu5}

	assert.Equal(t, "星がいっぱいの広い場所\n最初の文字: う...", q.FallbackHint())
}

func TestQuestion_Validate(t *testing.T) {
	valid := Question{ID: "x", Kanji: "卵", Readings: []string{"たまご"}, Level: Kyu5}
	require.NoError(t, valid.Validate())

	noReadings := valid
	noReadings.Readings = nil
	assert.Error(t, noReadings.Validate())

	badLevel := valid
	badLevel.Level = 9
	assert.Error(t, badLevel.Validate())
}
