package prompt

import (
	"fmt"
	"strings"

	"github.com/smartmemorandum/contract-analyzer/internal/domain/ai"
	"github.com/smartmemorandum/contract-analyzer/internal/domain/contracts"
)

// DefaultMaxSourceChars bounds the source code sent to a model.
const DefaultMaxSourceChars = 60000

const truncationMarker = "\n\n// ... source truncated ..."

const basePrompt = `You are an expert smart contract auditor who explains contracts to non-developers.
Write in plain English. Use short sections with headings. Do not invent functions that are not in the source.
If something cannot be determined from the source, say so.`

var focus = map[contracts.AnalysisType]string{
	contracts.AnalysisGeneral: `Explain what the contract does, who can call its main functions, how funds and tokens move,
and any admin powers the owner keeps.`,
	contracts.AnalysisSecurity: `Focus on security. List risks such as reentrancy, unchecked external calls, privileged roles,
upgradeability, self-destruct paths and oracle dependence. Rate each risk as critical, high, medium or low
and say how a user could be affected.`,
	contracts.AnalysisLegal: `Focus on legal and compliance aspects. Describe the rights and obligations the code creates,
custody of user funds, the ability to freeze or seize assets, fees, and anything resembling a security,
a lottery or a money transmission service.`,
	contracts.AnalysisTechnical: `Give a technical walkthrough for engineers: inheritance, storage layout, key functions
and modifiers, events, external dependencies and gas-relevant patterns.`,
}

// GetSystemPrompt returns the instructions for an analysis type; unknown
// types fall back to the general one.
func GetSystemPrompt(t contracts.AnalysisType, jurisdiction string) string {
	f, ok := focus[t]
	if !ok {
		f = focus[contracts.DefaultAnalysisType]
	}
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n")
	b.WriteString(f)
	if j := strings.TrimSpace(jurisdiction); j != "" {
		fmt.Fprintf(&b, "\n\nFrame any legal or regulatory remarks for the jurisdiction: %s.", j)
	}
	return b.String()
}

// GetUserPrompt wraps the contract source, truncated to maxChars when
// maxChars > 0, together with any static risk hints.
func GetUserPrompt(req ai.ExplainRequest, maxChars int) string {
	var b strings.Builder
	if req.Address != "" {
		fmt.Fprintf(&b, "Contract address: %s\n", req.Address)
	}
	if hints := Hints(req.SourceCode); len(hints) > 0 {
		b.WriteString("Patterns detected by a static pre-scan (verify before reporting):\n")
		for _, h := range hints {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}
	b.WriteString("\nSource code:\n```solidity\n")
	b.WriteString(Truncate(req.SourceCode, maxChars))
	b.WriteString("\n```")
	return b.String()
}

// Truncate cuts s to at most maxChars runes and appends a marker.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars]) + truncationMarker
}
