package blocks

// The variant table. Rule order inside each Rules slice is the documented
// field check order and is relied on by tests and by the editor UI when it
// maps findings onto inputs.

var codeLanguages = []string{
	"javascript", "typescript", "python", "java", "csharp", "cpp",
	"go", "rust", "html", "css", "sql", "bash", "json",
}

var videoProviders = []string{"youtube", "vimeo", "objectStorage"}

var listTypes = []string{"bullet", "numbered", "checkbox"}

// advancedTypes all share the generic "non-null config object" contract and
// a generic config editor. They stay extensible without per-type code.
var advancedTypes = []string{
	"interactiveTimeline",
	"dragDropQuiz",
	"flipCards",
	"hotspotImage",
	"scenarioBranch",
	"memoryGame",
	"sortingExercise",
	"fillInTheBlanks",
	"matchingPairs",
	"imageComparison",
	"ratingScale",
	"surveyForm",
	"embedWidget",
	"flashcardDeck",
	"progressChecklist",
	"discussionPrompt",
	"simulationFrame",
	"badgeAward",
}

func init() {
	Register(Variant{
		Type:  "text",
		Rules: []RuleFunc{requireString("text")},
		Defaults: func() map[string]any {
			return map[string]any{"text": ""}
		},
		Editor:         "TextBlockEditor",
		Renderer:       "TextBlockViewer",
		SanitizeFields: []string{"text"},
	})

	Register(Variant{
		Type: "video",
		Rules: []RuleFunc{
			requireString("videoUrl"),
			requireStringIn("videoProvider", videoProviders...),
		},
		Defaults: func() map[string]any {
			return map[string]any{"videoUrl": "", "videoProvider": "youtube"}
		},
		Editor:   "VideoBlockEditor",
		Renderer: "VideoBlockViewer",
	})

	Register(Variant{
		Type: "image",
		Rules: []RuleFunc{
			requireString("imageUrl"),
			requireString("altText"),
		},
		Defaults: func() map[string]any {
			return map[string]any{"imageUrl": "", "altText": ""}
		},
		Editor:   "ImageBlockEditor",
		Renderer: "ImageBlockViewer",
	})

	Register(Variant{
		Type: "code",
		Rules: []RuleFunc{
			requireString("code"),
			requireStringIn("language", codeLanguages...),
		},
		Defaults: func() map[string]any {
			return map[string]any{"code": "", "language": "javascript"}
		},
		Editor:   "CodeBlockEditor",
		Renderer: "CodeBlockViewer",
	})

	Register(Variant{
		Type: "list",
		Rules: []RuleFunc{
			requireItemsText("items"),
			requireStringIn("listType", listTypes...),
		},
		Defaults: func() map[string]any {
			return map[string]any{
				"items":    []any{map[string]any{"text": ""}},
				"listType": "bullet",
			}
		},
		Editor:   "ListBlockEditor",
		Renderer: "ListBlockViewer",
	})

	Register(Variant{
		Type:  "divider",
		Rules: nil, // always valid
		Defaults: func() map[string]any {
			return map[string]any{}
		},
		Editor:   "DividerBlockEditor",
		Renderer: "DividerBlockViewer",
	})

	Register(Variant{
		Type: "reflection",
		Rules: []RuleFunc{
			requireString("question"),
			requireString("prompt"),
			optionalNumberMin("minLength", 0),
		},
		Defaults: func() map[string]any {
			return map[string]any{"question": "", "prompt": ""}
		},
		Editor:   "ReflectionBlockEditor",
		Renderer: "ReflectionBlockViewer",
	})

	Register(Variant{
		Type: "poll",
		Rules: []RuleFunc{
			requireString("question"),
			requireMinItems("options", 2),
		},
		Defaults: func() map[string]any {
			return map[string]any{"question": "", "options": []any{}}
		},
		Editor:   "PollBlockEditor",
		Renderer: "PollBlockViewer",
	})

	Register(Variant{
		Type:  "wordCloud",
		Rules: []RuleFunc{requireString("question")},
		Defaults: func() map[string]any {
			return map[string]any{"question": "", "words": []any{}}
		},
		Editor:   "WordCloudBlockEditor",
		Renderer: "WordCloudBlockViewer",
	})

	Register(Variant{
		Type: "aiGenerator",
		Rules: []RuleFunc{
			requireString("prompt"),
			requireString("generatorType"),
			configNumberInRange("maxTokens", 1, 4000),
			configNumberInRange("temperature", 0, 2),
		},
		Defaults: func() map[string]any {
			return map[string]any{
				"prompt":        "",
				"generatorType": "text",
				"config": map[string]any{
					"maxTokens":   1000,
					"temperature": 0.7,
				},
			}
		},
		Editor:   "AIGeneratorBlockEditor",
		Renderer: "AIGeneratorBlockViewer",
	})

	for _, t := range []string{"choiceComparison", "playerTypeAnalyzer", "ethicalDilemmaSolver"} {
		Register(Variant{
			Type: t,
			Rules: []RuleFunc{
				requireString("question"),
				requireMinItems("options", 1),
			},
			Defaults: func() map[string]any {
				return map[string]any{"question": "", "options": []any{}}
			},
			Editor:   "ScenarioBlockEditor",
			Renderer: "ScenarioBlockViewer",
		})
	}

	Register(Variant{
		Type: "darkPatternRedesigner",
		Rules: []RuleFunc{
			requireString("badSlideUrl"),
			requireString("goodSlideUrl"),
			requireString("explanation"),
		},
		Defaults: func() map[string]any {
			return map[string]any{"badSlideUrl": "", "goodSlideUrl": "", "explanation": ""}
		},
		Editor:   "DarkPatternBlockEditor",
		Renderer: "DarkPatternBlockViewer",
	})

	for _, t := range advancedTypes {
		Register(Variant{
			Type:  t,
			Rules: []RuleFunc{requireObject("config")},
			Defaults: func() map[string]any {
				return map[string]any{"config": map[string]any{}}
			},
			Editor:   "AdvancedConfigEditor",
			Renderer: "AdvancedBlockViewer",
		})
	}
}
