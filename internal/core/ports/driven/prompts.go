package driven

import (
	"fmt"
	"strings"
)

// RegisterPrompts maps each summary register to its system prompt.
// All registers produce Japanese text; they differ in length and
// audience.
var RegisterPrompts = map[Register]string{
	RegisterShort: `あなたはGitHub Issueを日本語で要約するアシスタントです。
以下のIssueの内容を1〜2文の短い日本語で要約してください。
要約のみを出力し、前置きや説明は不要です。`,

	RegisterFull: `あなたはGitHub Issueを日本語で要約するアシスタントです。
以下のIssueの内容を、経緯・論点・現状がわかるように詳しく日本語で要約してください。
コメントでの議論の流れも含めてください。要約のみを出力してください。`,

	RegisterTechnical: `あなたはGitHub Issueを日本語で要約するアシスタントです。
以下のIssueをエンジニア向けに日本語で要約してください。
再現手順・エラー内容・関係するコンポーネントなど技術的な詳細を優先してください。
要約のみを出力してください。`,

	RegisterGeneral: `あなたはGitHub Issueを日本語で要約するアシスタントです。
以下のIssueを技術的な予備知識のない読者向けに、平易な日本語で要約してください。
専門用語は避けるか簡単に言い換えてください。要約のみを出力してください。`,
}

// BuildSummaryInput renders the issue text handed to the model as the
// user message: title, body, then each comment in order.
func BuildSummaryInput(req SummaryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n\n", req.Title)
	fmt.Fprintf(&b, "Body:\n%s\n", req.Body)
	for i, comment := range req.Comments {
		fmt.Fprintf(&b, "\nComment %d:\n%s\n", i+1, comment)
	}
	return b.String()
}
