package flavor

import "github.com/f3rmion/kanjimon/internal/kanji"

// Fallback dialogue by level. Weak monsters growl, the strongest speak in
// full sentences.
var fallbackDialogue = map[kanji.Level]map[Situation][]string{
	kanji.Kyu5: {
		Attacked: {"グルル…！", "ガウッ！", "キシャー！", "ピキーッ！"},
		Defeated: {"ギュウ…", "ピギャ…！", "グフッ…", "キュ〜…"},
	},
	kanji.Kyu4: {
		Attacked: {"グルルル...！", "甘いぞ！", "まだまだだな！"},
		Defeated: {"ぐふっ...やるな...", "覚えておけ...！", "まさか...負けるとは..."},
	},
	kanji.Kyu3: {
		Attacked: {"まだまだだな！", "甘いぞ、人間！", "ハハハ！弱い！", "もう一度来い！"},
		Defeated: {"ぐふっ...やるな...", "覚えておけ...！", "まさか...負けるとは...", "次は負けんぞ...！"},
	},
	kanji.Kyu2: {
		Attacked: {"その程度の知識で我に挑むか！", "読めぬか、愚か者め！", "修行が足りぬようだな！"},
		Defeated: {"見事だ…認めてやろう…", "我を倒すとは…何者だ…", "この屈辱、忘れぬぞ…"},
	},
	kanji.Kyu1: {
		Attacked: {"ひれ伏せ！我こそ漢字の王なり！", "千の文字を知らぬ者に用はない！", "浅はかな読みよ、出直してくるがよい！"},
		Defeated: {"我が敗れるとは…汝こそ真の読み手…", "見事…その知、我が王座にふさわしい…", "ふ…この世の漢字は汝に託そう…"},
	},
}

// FallbackLines returns the local dialogue set for a level and situation.
func FallbackLines(level kanji.Level, s Situation) []string {
	byLevel, ok := fallbackDialogue[level]
	if !ok {
		byLevel = fallbackDialogue[kanji.Kyu5]
	}
	return append([]string(nil), byLevel[s]...)
}
