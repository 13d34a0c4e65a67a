// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/codecraft-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a self-contained HTML page.
// All transcript text is escaped; code fences are highlighted with inline styles.
type HTMLExporter struct {
	options *Options
	now     func() time.Time
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Theme != "light" {
		opts.Theme = "dark"
	}
	return &HTMLExporter{options: opts, now: time.Now}
}

// Export converts a transcript to HTML.
func (e *HTMLExporter) Export(t *model.Transcript) ([]byte, error) {
	if err := validate(t); err != nil {
		return nil, err
	}

	var sb strings.Builder
	title := t.Title()

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(title)))
	sb.WriteString("    <meta name=\"generator\" content=\"codecraft\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", t.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(t, title))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range t.Messages() {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>codecraft</strong> on %s</p>\n",
		e.now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString(e.getScript())
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(t *model.Transcript, title string) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Project:</strong> %s</span>\n", html.EscapeString(t.Project)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(t.CreatedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", t.Len()))
	sb.WriteString("                <button class=\"theme-toggle\" onclick=\"toggleTheme()\" title=\"Toggle theme\">[Theme]</button>\n")
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderMessage renders a single question or answer node.
func (e *HTMLExporter) renderMessage(msg *model.ChatMessage) string {
	var sb strings.Builder

	class := "question-message"
	if msg.IsAnswer() {
		class = "answer-message"
	}
	if msg.IsError {
		class += " error-message"
	}
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s\">\n", class))

	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(roleHeading(msg))))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.CreatedAt)))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	if msg.IsError {
		sb.WriteString(fmt.Sprintf("<p class=\"error\">Error - %s</p>\n", html.EscapeString(msg.Content)))
	} else {
		sb.WriteString(formatContent(msg.Content))
		sb.WriteString("\n")
	}
	sb.WriteString("                </div>\n")
	sb.WriteString("            </div>\n")

	return sb.String()
}

// =============================================================================
// CONTENT FORMATTING
// =============================================================================

var (
	codeFenceRegex  = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
	blankLineRegex  = regexp.MustCompile(`\n\s*\n`)
)

// formatContent converts fenced code to highlighted blocks and the remaining
// text to escaped paragraphs.
func formatContent(content string) string {
	var sb strings.Builder

	last := 0
	for _, loc := range codeFenceRegex.FindAllStringSubmatchIndex(content, -1) {
		sb.WriteString(formatProse(content[last:loc[0]]))
		lang := content[loc[2]:loc[3]]
		code := content[loc[4]:loc[5]]
		sb.WriteString(formatCodeBlock(lang, code))
		last = loc[1]
	}
	sb.WriteString(formatProse(content[last:]))

	return sb.String()
}

// formatProse escapes text and splits it into paragraphs on blank lines.
func formatProse(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var sb strings.Builder
	for _, para := range blankLineRegex.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		escaped := html.EscapeString(para)
		escaped = inlineCodeRegex.ReplaceAllString(escaped, "<code class=\"inline-code\">$1</code>")
		escaped = strings.ReplaceAll(escaped, "\n", "<br>\n")
		sb.WriteString("<p>" + escaped + "</p>\n")
	}
	return sb.String()
}

// formatCodeBlock renders a fenced block. Highlighting failures fall back to
// escaped plain text.
func formatCodeBlock(lang, code string) string {
	code = strings.TrimRight(code, "\n")

	langLabel := ""
	if lang != "" {
		langLabel = fmt.Sprintf("<div class=\"code-lang\">%s</div>", html.EscapeString(lang))
	}

	body, err := highlightHTML(code, lang)
	if err != nil {
		body = fmt.Sprintf("<pre><code class=\"language-%s\">%s</code></pre>", html.EscapeString(lang), html.EscapeString(code))
	}
	return fmt.Sprintf("<div class=\"code-block\">%s%s</div>\n", langLabel, body)
}

func highlightHTML(code, lang string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := chromahtml.New(chromahtml.TabWidth(4)).Format(&buf, style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

// getCSS returns the stylesheet for the exported page. Colours are CSS variables
// so a single class on <body> switches between the dark and light palettes.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        .dark-theme {
            --bg: #1a1b26; --panel: #24283b; --edge: #414868;
            --text: #c0caf5; --muted: #565f89;
            --you: #7aa2f7; --ai: #9ece6a; --err: #f7768e; --code: #16161e;
        }
        .light-theme {
            --bg: #ffffff; --panel: #f7f8fa; --edge: #e1e4e8;
            --text: #24292e; --muted: #6a737d;
            --you: #0366d6; --ai: #22863a; --err: #d73a49; --code: #f6f8fa;
        }
        body {
            font: 16px/1.6 -apple-system, "Segoe UI", Roboto, sans-serif;
            color: var(--text); background: var(--bg); padding: 20px;
        }
        .container { max-width: 900px; margin: 0 auto; background: var(--panel); border-radius: 8px; }
        .header { padding: 24px 32px; border-bottom: 1px solid var(--edge); }
        .header h1 { font-size: 24px; margin-bottom: 12px; }
        .metadata { display: flex; flex-wrap: wrap; gap: 16px; color: var(--muted); font-size: 14px; }
        .theme-toggle {
            margin-left: auto; padding: 2px 10px; cursor: pointer;
            background: none; color: var(--muted); border: 1px solid var(--edge); border-radius: 4px;
        }
        .conversation { padding: 24px 32px; }
        .message { padding: 16px 20px; margin-bottom: 16px; border-left: 3px solid var(--edge); background: var(--bg); }
        .question-message { border-left-color: var(--you); }
        .answer-message { border-left-color: var(--ai); }
        .error-message { border-left-color: var(--err); }
        .message-header { display: flex; justify-content: space-between; margin-bottom: 8px; }
        .role-label { font-weight: 600; }
        .timestamp { color: var(--muted); font-size: 13px; }
        .message-content p { margin-bottom: 10px; }
        .error { color: var(--err); }
        .inline-code { font-family: monospace; padding: 1px 5px; background: var(--code); border-radius: 3px; }
        .code-block { margin: 12px 0; border: 1px solid var(--edge); border-radius: 6px; overflow-x: auto; }
        .code-block pre { padding: 12px; font: 14px/1.45 "Fira Code", monospace; }
        .code-lang { padding: 4px 12px; font-size: 12px; color: var(--muted); border-bottom: 1px solid var(--edge); }
        .footer { padding: 16px 32px; color: var(--muted); font-size: 13px; text-align: center; border-top: 1px solid var(--edge); }
        @media (max-width: 768px) {
            body { padding: 8px; }
            .header, .conversation, .footer { padding: 16px; }
        }
    </style>
`
}

// =============================================================================
// EMBEDDED JAVASCRIPT
// =============================================================================

// getScript returns the theme toggle. The choice is kept in localStorage.
func (e *HTMLExporter) getScript() string {
	return `    <script>
        function toggleTheme() {
            const next = document.body.classList.contains('dark-theme') ? 'light' : 'dark';
            document.body.className = next + '-theme';
            localStorage.setItem('codecraft-theme', next);
        }
        const saved = localStorage.getItem('codecraft-theme');
        if (saved) { document.body.className = saved + '-theme'; }
    </script>
`
}
