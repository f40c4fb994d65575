package model

// Dialogue is the tagged dialogue produced by the external annotation step
type Dialogue struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Turns []Turn `json:"dialogue" yaml:"dialogue"`
}

// Turn is one speaker turn with its tagger output
type Turn struct {
	Speaker    string         `json:"speaker" yaml:"speaker"`
	Text       string         `json:"text" yaml:"text"`
	Tokens     []Token        `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	NounChunks []Span         `json:"noun_chunks,omitempty" yaml:"noun_chunks,omitempty"`
	Phrases    []TaggedPhrase `json:"phrases,omitempty" yaml:"phrases,omitempty"`
}

// Token is a single tagged word
type Token struct {
	Text        string `json:"text" yaml:"text"`
	Lemma       string `json:"lemma" yaml:"lemma"`
	POS         string `json:"pos" yaml:"pos"`
	Start       int    `json:"start" yaml:"start"`
	End         int    `json:"end" yaml:"end"`
	Sentence    int    `json:"sentence,omitempty" yaml:"sentence,omitempty"`
	PhrasalVerb bool   `json:"phrasal_verb,omitempty" yaml:"phrasal_verb,omitempty"`
	Idiom       bool   `json:"idiom,omitempty" yaml:"idiom,omitempty"`
}

// Span is a character range inside a turn's text (noun chunks)
type Span struct {
	Text  string `json:"text" yaml:"text"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// TaggedPhrase is a multi-word candidate phrase already identified by the tagger
type TaggedPhrase struct {
	Text        string `json:"text" yaml:"text"`
	Lemma       string `json:"lemma,omitempty" yaml:"lemma,omitempty"`
	POS         string `json:"pos,omitempty" yaml:"pos,omitempty"`
	Sentence    int    `json:"sentence,omitempty" yaml:"sentence,omitempty"`
	PhrasalVerb bool   `json:"phrasal_verb,omitempty" yaml:"phrasal_verb,omitempty"`
	Idiom       bool   `json:"idiom,omitempty" yaml:"idiom,omitempty"`
	Expression  bool   `json:"expression,omitempty" yaml:"expression,omitempty"`
	Collocation bool   `json:"collocation,omitempty" yaml:"collocation,omitempty"`
}
