package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/gapfill/internal/llm"
	"github.com/ppiankov/gapfill/internal/model"
)

// blankMarker is shown in place of a removed phrase
const blankMarker = "_____"

// Renderer writes exercises in the supported output formats
type Renderer struct {
	previewStyle string // glamour style name, "" for auto
	logger       *zap.Logger
}

// NewRenderer creates a renderer. previewStyle is a glamour standard style
// ("dark", "light", "notty", ...) or "" to detect from the terminal.
func NewRenderer(previewStyle string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{previewStyle: previewStyle, logger: logger}
}

// Outputs selects the files written by RenderOutputs. Empty paths are skipped.
type Outputs struct {
	JSON     string
	YAML     string
	Markdown string
	HTML     string
	Preview  bool
}

// RenderOutputs writes every requested output for a result. The review, when
// present, goes to a separate .review.md file next to the Markdown (or JSON)
// output and never into the exercise payload.
func (r *Renderer) RenderOutputs(result *Result, out Outputs, w io.Writer) error {
	ex := result.Exercise

	if out.JSON != "" {
		if err := r.RenderJSON(ex, out.JSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		r.logger.Debug("wrote output", zap.String("format", "json"), zap.String("path", out.JSON))
	}

	if out.YAML != "" {
		if err := r.RenderYAML(ex, out.YAML); err != nil {
			return fmt.Errorf("render YAML: %w", err)
		}
		r.logger.Debug("wrote output", zap.String("format", "yaml"), zap.String("path", out.YAML))
	}

	if out.Markdown != "" || out.HTML != "" {
		r.logUnplaced(ex)
	}

	if out.Markdown != "" {
		if err := writeFile(out.Markdown, []byte(Markdown(ex))); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		r.logger.Debug("wrote output", zap.String("format", "markdown"), zap.String("path", out.Markdown))
	}

	if out.HTML != "" {
		if err := r.RenderHTML(ex, out.HTML); err != nil {
			return fmt.Errorf("render HTML: %w", err)
		}
		r.logger.Debug("wrote output", zap.String("format", "html"), zap.String("path", out.HTML))
	}

	if result.Review != nil {
		if reviewPath := ReviewPath(out); reviewPath != "" {
			if err := writeFile(reviewPath, []byte(llm.RenderMarkdown(result.Review, *ex))); err != nil {
				r.logger.Warn("failed to write review", zap.String("path", reviewPath), zap.Error(err))
			} else {
				r.logger.Debug("wrote output", zap.String("format", "review"), zap.String("path", reviewPath))
			}
		}
	}

	// Console output is skipped when w is nil (batch runs)
	if w == nil {
		return nil
	}

	if out.Preview {
		if err := r.Preview(ex, w); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
	}

	r.RenderSummary(result, w)
	return nil
}

// ReviewPath derives the review file path from the Markdown output, falling
// back to the JSON output. It returns "" when neither is set.
func ReviewPath(out Outputs) string {
	base := out.Markdown
	if base == "" {
		base = out.JSON
	}
	if base == "" || base == "-" {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".review.md"
}

// RenderJSON writes the exercise payload as indented JSON
func (r *Renderer) RenderJSON(ex *model.Exercise, path string) error {
	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal exercise: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderYAML writes the exercise payload as YAML
func (r *Renderer) RenderYAML(ex *model.Exercise, path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ex); err != nil {
		return fmt.Errorf("marshal exercise: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshal exercise: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// RenderHTML writes a standalone worksheet page
func (r *Renderer) RenderHTML(ex *model.Exercise, path string) error {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, ex); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

// Preview renders the Markdown worksheet for the terminal
func (r *Renderer) Preview(ex *model.Exercise, w io.Writer) error {
	style := glamour.WithAutoStyle()
	if r.previewStyle != "" {
		style = glamour.WithStylePath(r.previewStyle)
	}

	tr, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return fmt.Errorf("create terminal renderer: %w", err)
	}

	out, err := tr.Render(Markdown(ex))
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// RenderSummary prints a short console summary
func (r *Renderer) RenderSummary(result *Result, w io.Writer) {
	ex := result.Exercise
	meta := ex.Metadata

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  %s\n", titleOf(ex))
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Status:       %s\n", meta.ValidationStatus)
	fmt.Fprintf(w, "  Blanks:       %d of %d turns (density %.2f, target %.2f)\n",
		meta.TotalBlanks, len(ex.Dialogue), meta.AchievedDensity, meta.TargetDensity)
	fmt.Fprintf(w, "  Confidence:   %d high, %d medium, %d low\n",
		meta.HighConfidence, meta.MediumConfidence, meta.LowConfidence)
	fmt.Fprintf(w, "  Locked:       %.0f%%\n", meta.LockedChunkCompliance*100)
	fmt.Fprintf(w, "  Level:        %s\n", meta.TargetCEFR)
	if result.Cached {
		fmt.Fprintf(w, "  Cache:        hit\n")
	}
	if result.Review != nil {
		fmt.Fprintf(w, "  Review:       %s\n", result.Review.Provider)
	}
	fmt.Fprintf(w, "\n")
}

// Markdown renders the worksheet: blanked dialogue, answer key and deep dives
func Markdown(ex *model.Exercise) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", titleOf(ex))
	fmt.Fprintf(&b, "_Level %s · %d blanks · %s_\n\n", ex.Metadata.TargetCEFR, ex.Metadata.TotalBlanks, ex.Metadata.ValidationStatus)

	b.WriteString("## Dialogue\n\n")
	byTurn := blanksByTurn(ex)
	for _, line := range ex.Dialogue {
		fmt.Fprintf(&b, "**%s:** ", line.Speaker)
		for _, seg := range segments(line.Text, byTurn[line.Index]) {
			if seg.blank > 0 {
				fmt.Fprintf(&b, "%s (%d)", blankMarker, seg.blank)
			} else {
				b.WriteString(seg.text)
			}
		}
		b.WriteString("\n\n")
	}

	if len(ex.AnswerVariations) > 0 {
		b.WriteString("## Answer key\n\n")
		b.WriteString("| # | Answer | Also accept | Category | CEFR | Confidence |\n")
		b.WriteString("|---|--------|-------------|----------|------|------------|\n")
		for i, av := range ex.AnswerVariations {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
				i+1, av.Answer, strings.Join(av.Alternatives, ", "), av.Category, av.CEFR, av.Confidence)
		}
		b.WriteString("\n")
	}

	if len(ex.DeepDive) > 0 {
		b.WriteString("## Deep dive\n\n")
		for _, in := range ex.DeepDive {
			fmt.Fprintf(&b, "### %s\n\n", in.Phrase)
			fmt.Fprintf(&b, "- **Type:** %s\n", in.GrammarType)
			fmt.Fprintf(&b, "- **Meaning:** %s\n", in.Explanation)
			fmt.Fprintf(&b, "- **Usage:** %s\n", in.UsageContext)
			if len(in.Collocations) > 0 {
				fmt.Fprintf(&b, "- **Collocations:** %s\n", strings.Join(in.Collocations, ", "))
			}
			fmt.Fprintf(&b, "- **IELTS:** %s\n", in.IELTSRelevance)
			fmt.Fprintf(&b, "- **Common errors:** %s\n", in.CommonErrors)
			fmt.Fprintf(&b, "- **Example:** %s\n\n", in.Example)
		}
	}

	return b.String()
}

// WriteHTML renders the worksheet page as an HTML node tree
func WriteHTML(w io.Writer, ex *model.Exercise) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", "en"))
	doc.AppendChild(root)

	head := element(atom.Head)
	root.AppendChild(head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	title := element(atom.Title)
	title.AppendChild(text(titleOf(ex)))
	head.AppendChild(title)
	style := element(atom.Style)
	style.AppendChild(text(".blank{display:inline-block;min-width:6em;border-bottom:1px solid #333}.speaker{font-weight:bold}"))
	head.AppendChild(style)

	body := element(atom.Body)
	root.AppendChild(body)

	h1 := element(atom.H1)
	h1.AppendChild(text(titleOf(ex)))
	body.AppendChild(h1)

	info := element(atom.P, attr("class", "meta"))
	info.AppendChild(text(fmt.Sprintf("Level %s · %d blanks", ex.Metadata.TargetCEFR, ex.Metadata.TotalBlanks)))
	body.AppendChild(info)

	list := element(atom.Ol, attr("class", "dialogue"))
	body.AppendChild(list)
	byTurn := blanksByTurn(ex)
	for _, line := range ex.Dialogue {
		li := element(atom.Li)
		speaker := element(atom.Span, attr("class", "speaker"))
		speaker.AppendChild(text(line.Speaker + ": "))
		li.AppendChild(speaker)

		for _, seg := range segments(line.Text, byTurn[line.Index]) {
			if seg.blank > 0 {
				span := element(atom.Span, attr("class", "blank"), attr("data-blank", fmt.Sprint(seg.blank)))
				span.AppendChild(text(fmt.Sprintf("(%d)", seg.blank)))
				li.AppendChild(span)
				continue
			}
			li.AppendChild(text(seg.text))
		}
		list.AppendChild(li)
	}

	if len(ex.AnswerVariations) > 0 {
		h2 := element(atom.H2)
		h2.AppendChild(text("Answer key"))
		body.AppendChild(h2)

		key := element(atom.Ol, attr("class", "answers"))
		for _, av := range ex.AnswerVariations {
			li := element(atom.Li)
			strong := element(atom.Strong)
			strong.AppendChild(text(av.Answer))
			li.AppendChild(strong)
			if len(av.Alternatives) > 0 {
				li.AppendChild(text(" (also: " + strings.Join(av.Alternatives, ", ") + ")"))
			}
			key.AppendChild(li)
		}
		body.AppendChild(key)
	}

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}
	return nil
}

// blankRef is a numbered blank inside one turn
type blankRef struct {
	number int
	answer string
}

// segment is a run of turn text, or a blank when blank > 0
type segment struct {
	text  string
	blank int
}

func blanksByTurn(ex *model.Exercise) map[int][]blankRef {
	byTurn := make(map[int][]blankRef)
	for i, av := range ex.AnswerVariations {
		byTurn[av.Index] = append(byTurn[av.Index], blankRef{number: i + 1, answer: av.Answer})
	}
	return byTurn
}

// segments splits a turn around its blanks. Each answer replaces its first
// whole-word occurrence (case-insensitive), retrying with tokenizer gaps
// ("do n't" for "don't") ignored. An answer that still cannot be found is
// appended as a trailing blank so the number still appears.
func segments(line string, blanks []blankRef) []segment {
	segs, _ := placeBlanks(line, blanks)
	return segs
}

// placeBlanks is segments that also reports the blanks it had to append
func placeBlanks(line string, blanks []blankRef) ([]segment, []blankRef) {
	segs := []segment{{text: line}}
	var missed []blankRef
	for _, bl := range blanks {
		if !cutBlank(&segs, bl) {
			segs = append(segs, segment{text: " "}, segment{blank: bl.number})
			missed = append(missed, bl)
		}
	}
	return segs, missed
}

// logUnplaced reports blanks whose answer is not in the turn text. The
// worksheet still shows the answer in those lines.
func (r *Renderer) logUnplaced(ex *model.Exercise) {
	byTurn := blanksByTurn(ex)
	for _, line := range ex.Dialogue {
		_, missed := placeBlanks(line.Text, byTurn[line.Index])
		for _, bl := range missed {
			r.logger.Debug("blank answer not found in turn text",
				zap.Int("blank", bl.number),
				zap.Int("turn", line.Index),
				zap.String("answer", bl.answer))
		}
	}
}

func cutBlank(segs *[]segment, bl blankRef) bool {
	if strings.TrimSpace(bl.answer) == "" {
		return false
	}
	if cutAt(segs, bl, func(text string) []int { return answerPattern(bl.answer).FindStringIndex(text) }) {
		return true
	}
	loose := loosePattern(bl.answer)
	if loose == nil {
		return false
	}
	return cutAt(segs, bl, func(text string) []int {
		loc := loose.FindStringSubmatchIndex(text)
		if loc == nil {
			return nil
		}
		return loc[2:4]
	})
}

// cutAt replaces the first text segment where find reports a match
func cutAt(segs *[]segment, bl blankRef, find func(string) []int) bool {
	for i, seg := range *segs {
		if seg.blank > 0 {
			continue
		}
		loc := find(seg.text)
		if loc == nil {
			continue
		}
		parts := []segment{
			{text: seg.text[:loc[0]]},
			{blank: bl.number},
			{text: seg.text[loc[1]:]},
		}
		out := make([]segment, 0, len(*segs)+2)
		out = append(out, (*segs)[:i]...)
		out = append(out, parts...)
		out = append(out, (*segs)[i+1:]...)
		*segs = out
		return true
	}
	return false
}

var answerWord = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// loosePattern matches the answer's word runs in order with any punctuation
// or spacing between them. Group 1 is the matched phrase.
func loosePattern(answer string) *regexp.Regexp {
	words := answerWord.FindAllString(answer, -1)
	if len(words) == 0 {
		return nil
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	const gap = `[^\p{L}\p{N}_]*`
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(` + strings.Join(quoted, gap) + `)(?:[^\p{L}\p{N}_]|$)`)
}

// answerPattern matches the answer as whole words when it starts and ends
// with word characters, and as a plain substring otherwise
func answerPattern(answer string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(answer)
	if isWordByte(answer[0]) && isWordByte(answer[len(answer)-1]) {
		return regexp.MustCompile(`(?i)\b` + quoted + `\b`)
	}
	return regexp.MustCompile(`(?i)` + quoted)
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func titleOf(ex *model.Exercise) string {
	if ex.Title != "" {
		return ex.Title
	}
	return "Gap-fill exercise"
}

// writeFile writes data to path, or to stdout when path is "-"
func writeFile(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}
