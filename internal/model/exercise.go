package model

// Exercise is the complete fill-in-the-blank payload for one dialogue.
// The JSON layout matches the roleplay script consumed by the web client.
type Exercise struct {
	ID               string            `json:"id" yaml:"id"`
	Title            string            `json:"title,omitempty" yaml:"title,omitempty"`
	Dialogue         []DialogueLine    `json:"dialogue" yaml:"dialogue"`
	AnswerVariations []AnswerVariation `json:"answerVariations" yaml:"answerVariations"`
	DeepDive         []DeepDiveInsight `json:"deepDive" yaml:"deepDive"`
	Metadata         Metadata          `json:"metadata" yaml:"metadata"`
}

// DialogueLine echoes one input turn
type DialogueLine struct {
	Index   int    `json:"index" yaml:"index"`
	Speaker string `json:"speaker" yaml:"speaker"`
	Text    string `json:"text" yaml:"text"`
}

// AnswerVariation is the answer key entry for one blank
type AnswerVariation struct {
	Index        int        `json:"index" yaml:"index"` // Dialogue turn holding the blank
	Answer       string     `json:"answer" yaml:"answer"`
	Alternatives []string   `json:"alternatives" yaml:"alternatives"`
	Confidence   Confidence `json:"confidence" yaml:"confidence"`
	Category     Category   `json:"pos" yaml:"pos"`
	CEFR         CEFR       `json:"cefr_level" yaml:"cefr_level"`
}

// DeepDiveInsight is a structured usage note for one blank
type DeepDiveInsight struct {
	TurnIndex      int      `json:"dialogue_index" yaml:"dialogue_index"`
	Phrase         string   `json:"phrase" yaml:"phrase"`
	GrammarType    string   `json:"grammar_type" yaml:"grammar_type"`
	Explanation    string   `json:"explanation" yaml:"explanation"`
	UsageContext   string   `json:"usage_context" yaml:"usage_context"`
	Collocations   []string `json:"collocations" yaml:"collocations"`
	IELTSRelevance string   `json:"ielts_relevance" yaml:"ielts_relevance"`
	CommonErrors   string   `json:"common_errors" yaml:"common_errors"`
	Example        string   `json:"example" yaml:"example"`
}

// ValidationStatus summarizes whether every blank is adequately covered
type ValidationStatus string

const (
	StatusPass ValidationStatus = "PASS"
	StatusWarn ValidationStatus = "WARN"
	StatusFail ValidationStatus = "FAIL"
)

// Metadata carries per-exercise quality figures
type Metadata struct {
	TargetDensity         float64          `json:"blank_density_target" yaml:"blank_density_target"`
	AchievedDensity       float64          `json:"blank_density_achieved" yaml:"blank_density_achieved"`
	TotalBlanks           int              `json:"total_blanks_inserted" yaml:"total_blanks_inserted"`
	GrammarDistribution   map[Category]int `json:"grammar_distribution" yaml:"grammar_distribution"`
	LockedChunkCompliance float64          `json:"locked_chunks_compliance" yaml:"locked_chunks_compliance"`
	ValidationStatus      ValidationStatus `json:"validation_status" yaml:"validation_status"`
	HighConfidence        int              `json:"high_confidence_blanks" yaml:"high_confidence_blanks"`
	MediumConfidence      int              `json:"medium_confidence_blanks" yaml:"medium_confidence_blanks"`
	LowConfidence         int              `json:"low_confidence_blanks" yaml:"low_confidence_blanks"`
	CandidateCount        int              `json:"candidate_count" yaml:"candidate_count"`
	AverageScore          float64          `json:"average_candidate_score" yaml:"average_candidate_score"`
	TargetCEFR            CEFR             `json:"difficulty_level" yaml:"difficulty_level"`
	ProcessingSeconds     float64          `json:"processing_time_seconds" yaml:"processing_time_seconds"`
}

// Review contains optional LLM-generated teacher notes.
// It is produced after the exercise is assembled and stored beside it, never inside.
type Review struct {
	Provider   string `json:"provider" yaml:"provider"`
	Model      string `json:"model" yaml:"model"`
	NotesMD    string `json:"notes_md" yaml:"notes_md"`
	TokensUsed int    `json:"tokens_used,omitempty" yaml:"tokens_used,omitempty"`
}
