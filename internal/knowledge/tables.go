package knowledge

// Tables is the serializable form of the knowledge base. Ordered slices are used
// wherever iteration order reaches the output (variation fallback, spelling checks).
type Tables struct {
	LockedChunks     LockedChunks      `yaml:"locked_chunks"`
	Collocations     []Entry           `yaml:"collocations"`
	PhrasalVerbs     []string          `yaml:"phrasal_verbs"`
	Idioms           map[string]string `yaml:"idioms"`
	CEFRBands        []Band            `yaml:"cefr_bands"`
	Spellings        []SpellingPair    `yaml:"regional_spellings"`
	Variations       []Entry           `yaml:"variations"`
	LearnerErrors    map[string]string `yaml:"learner_errors"`
	Examples         map[string]string `yaml:"examples"`
	RegisterVariants []Entry           `yaml:"register_variants"`
	CasualMarkers    []string          `yaml:"casual_markers"`
	FormalMarkers    []string          `yaml:"formal_markers"`
	Stopwords        []string          `yaml:"stopwords"`
}

// LockedChunks holds the two prioritized phrase buckets
type LockedChunks struct {
	A []string `yaml:"a"`
	B []string `yaml:"b"`
}

// Entry maps a key phrase to an ordered list of related phrases
type Entry struct {
	Key    string   `yaml:"key"`
	Values []string `yaml:"values"`
}

// Band lists the words known to sit at one CEFR level
type Band struct {
	Level string   `yaml:"level"`
	Words []string `yaml:"words"`
}

// SpellingPair is an American spelling and its British counterpart
type SpellingPair struct {
	US string `yaml:"us"`
	GB string `yaml:"gb"`
}

// DefaultTables returns the built-in English tables
func DefaultTables() Tables {
	return Tables{
		LockedChunks: LockedChunks{
			A: []string{
				"trying to", "missing", "got it right", "make a cake",
				"flour", "ingredient", "healthy", "variety",
				"break", "holiday", "prepare", "celebrate",
				"get excited", "plan", "looking forward",
				"piece of cake", "break the ice",
			},
			B: []string{
				"want to", "need", "shopping", "store",
				"kitchen", "mix", "enjoy", "family",
				"friend", "new year", "resolution", "success",
			},
		},
		Collocations: []Entry{
			{Key: "trying", Values: []string{"to understand", "to achieve", "to improve", "to get"}},
			{Key: "missing", Values: []string{"some", "a few", "the", "an"}},
			{Key: "got", Values: []string{"it right", "excited", "ready", "lucky"}},
			{Key: "make", Values: []string{"a cake", "a decision", "progress", "a difference"}},
			{Key: "break", Values: []string{"the ice", "a habit", "the rules", "from"}},
			{Key: "look", Values: []string{"forward", "after", "at", "around"}},
			{Key: "take", Values: []string{"a break", "care", "time", "action"}},
		},
		PhrasalVerbs: []string{
			"break the ice", "get up", "put off", "look after",
			"make up", "take on", "go through", "come back",
			"try out", "figure out", "work out", "set up",
		},
		Idioms: map[string]string{
			"piece of cake": "something very easy",
			"break the ice": "start conversation in uncomfortable situations",
			"got it right":  "understood correctly",
			"take a break":  "rest for a short time",
			"get excited":   "become enthusiastic",
		},
		CEFRBands: []Band{
			{Level: "A1", Words: []string{"make", "get", "try", "want", "need", "go", "come"}},
			{Level: "A2", Words: []string{"understand", "improve", "practice", "enjoy", "celebrate", "prepare"}},
			{Level: "B1", Words: []string{"attempt", "ingredient", "variety", "healthy", "resolution", "success"}},
			{Level: "B2", Words: []string{"execute", "accommodate", "distinguish", "comprehend", "maintain"}},
			{Level: "C1", Words: []string{"facilitate", "diminish", "discourse", "articulate", "substantiate"}},
			{Level: "C2", Words: []string{"obfuscate", "perspicacious", "recondite", "mellifluous", "abstruse"}},
		},
		Spellings: []SpellingPair{
			{US: "color", GB: "colour"},
			{US: "organize", GB: "organise"},
			{US: "favorite", GB: "favourite"},
			{US: "apologize", GB: "apologise"},
			{US: "realize", GB: "realise"},
			{US: "center", GB: "centre"},
			{US: "analyze", GB: "analyse"},
			{US: "elevator", GB: "lift"},
			{US: "apartment", GB: "flat"},
			{US: "truck", GB: "lorry"},
		},
		// Keyed by lemma so every inflection of a word shares its alternatives.
		Variations: []Entry{
			{Key: "try", Values: []string{"attempting", "planning", "wanting", "hoping"}},
			{Key: "miss", Values: []string{"lacking", "short of", "needing", "without"}},
			{Key: "get", Values: []string{"guessed", "named", "identified", "said"}},
			{Key: "make", Values: []string{"create", "prepare", "build", "construct"}},
			{Key: "break", Values: []string{"interrupt", "stop", "pause", "rest"}},
			{Key: "welcome", Values: []string{"greet", "receive", "hail", "salute"}},
			{Key: "ready", Values: []string{"prepared", "set", "available", "equipped"}},
			{Key: "help", Values: []string{"assist", "aid", "support", "facilitate"}},
			{Key: "find", Values: []string{"discover", "locate", "identify", "spot"}},
			{Key: "know", Values: []string{"understand", "realise", "recognise", "be aware"}},
		},
		LearnerErrors: map[string]string{
			"trying":  "❌ 'trying for' (incorrect) | ✓ 'trying to' (correct)",
			"missing": "❌ Confuse with 'miss' (feel absence) | ✓ 'missing' = lacking",
			"got":     "❌ 'getted' (incorrect) | ✓ 'got' (past tense)",
			"make":    "❌ 'make decision' | ✓ 'make a decision'",
			"break":   "❌ 'break for break' | ✓ 'take a break'",
		},
		Examples: map[string]string{
			"trying":  "I'm trying to improve my English speaking skills.",
			"missing": "I'm missing some flour for the cake.",
			"got":     "You got it right, that's the correct answer.",
			"make":    "They make a decision after discussing all options.",
			"break":   "Let's take a break and continue later.",
		},
		RegisterVariants: []Entry{
			{Key: "acknowledge", Values: []string{"recognise", "understand"}},
			{Key: "facilitate", Values: []string{"help", "assist"}},
			{Key: "utilise", Values: []string{"use"}},
			{Key: "consequently", Values: []string{"so", "therefore"}},
		},
		CasualMarkers: []string{"gonna", "wanna", "gotta", "kinda", "sorta", "like", "um", "uh"},
		FormalMarkers: []string{"therefore", "moreover", "henceforth", "pursuant", "notwithstanding"},
		Stopwords:     []string{"is", "the", "a", "an", "and", "or", "but", "in", "on", "at"},
	}
}
