package core

import (
	"fmt"
	"strings"
)

// HelpText is returned by Process for "help" or "?".
const HelpText = "📝 **HSN Code Validation Help**:\n" +
	"- Enter one or more HSN or SAC codes separated by commas.\n" +
	"- Codes must be numeric with length 2, 4, 6, or 8.\n" +
	"- Example: `1001, 123456, 99887766`\n" +
	"- You can upload a new HSN master file in Admin Panel.\n"

// IsHelp reports whether input asks for usage instructions.
func IsHelp(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "help", "?":
		return true
	}
	return false
}

// Process validates every comma-separated code in input and returns the
// formatted report, one block per code in input order, separated by a blank
// line. Input with no codes yields an empty report.
func (v *Validator) Process(input string) string {
	if IsHelp(input) {
		return HelpText
	}

	codes := SplitCodes(input)
	results := make([]Result, len(codes))
	for i, code := range codes {
		results[i] = v.Check(code)
	}
	return FormatReport(results)
}

// FormatReport renders results in order as one report.
func FormatReport(results []Result) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = FormatResult(r)
	}
	return JoinBlocks(blocks)
}

// JoinBlocks joins per-code report blocks with a blank line between them.
func JoinBlocks(blocks []string) string {
	return strings.Join(blocks, "\n\n")
}

// FormatResult renders one code's result as a report block.
func FormatResult(r Result) string {
	switch r.Status {
	case StatusInvalidFormat:
		return fmt.Sprintf("❌ Code '%s': Invalid format - %s.", r.Code, r.Reason)

	case StatusNotFound:
		msg := fmt.Sprintf("❌ Code '%s': Not found in master data.", r.Code)
		if len(r.Suggestions) > 0 {
			msg += fmt.Sprintf(" Did you mean: %s?", strings.Join(r.Suggestions, ", "))
		}
		return msg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Code '%s' is valid.\n", r.Code)
	fmt.Fprintf(&b, "📄 Description: %s\n", r.Description)
	b.WriteString("🔍 Hierarchy Check:\n")
	for i, h := range r.Hierarchy {
		if i > 0 {
			b.WriteByte('\n')
		}
		if h.Exists {
			fmt.Fprintf(&b, "  %s → ✅ Exists", h.Prefix)
		} else {
			fmt.Fprintf(&b, "  %s → ❌ Not found", h.Prefix)
		}
	}
	return b.String()
}
