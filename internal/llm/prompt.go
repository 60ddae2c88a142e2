package llm

import (
	"fmt"
	"strings"

	"github.com/f3rmion/kanjimon/internal/flavor"
	"github.com/f3rmion/kanjimon/internal/kanji"
)

// hintPrompt builds the hint request for a question.
func hintPrompt(q kanji.Question) string {
	var sb strings.Builder

	sb.WriteString("あなたは漢字クイズゲームのヒント係です。\n")
	sb.WriteString(fmt.Sprintf("漢字「%s」の読み方のヒントを出してください。\n", q.Kanji))
	if q.Meaning != "" {
		sb.WriteString(fmt.Sprintf("(意味: %s)\n", q.Meaning))
	}
	sb.WriteString("- 成り立ちや覚え方を含めて1-2文で\n")
	sb.WriteString("- 答え（読み）自体は絶対に言わないで\n")
	sb.WriteString("- ゲームボーイ風のレトロなゲームのキャラクターっぽい口調で")

	return sb.String()
}

// dialoguePrompt builds the monster dialogue request.
func dialoguePrompt(req flavor.DialogueRequest) string {
	scene := "攻撃した"
	if req.Situation == flavor.Defeated {
		scene = "倒された"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("あなたは「%s」という名前のドット絵モンスターです。\n", req.MonsterName))
	sb.WriteString(fmt.Sprintf("%s時のセリフを1文だけ言ってください。\n", scene))
	sb.WriteString("- ゲームボーイ風のレトロRPGのモンスターらしい口調で\n")
	sb.WriteString(fmt.Sprintf("- %sのモンスターとして%s\n", req.Level.Label(), tone(req.Level)))
	sb.WriteString("- 15文字以内で短く")

	return sb.String()
}

func tone(level kanji.Level) string {
	switch level {
	case kanji.Kyu5, kanji.Kyu4:
		return "うなり声まじりの片言で"
	case kanji.Kyu3:
		return "挑発的に"
	default:
		return "威厳のある尊大な口調で"
	}
}
