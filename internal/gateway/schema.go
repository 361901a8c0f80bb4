package gateway

// Response schemas for the match service. Payloads are validated before
// decoding so a drifting or corrupted server response surfaces as a
// *FatalError instead of half-filled structs.

var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"index":    map[string]any{"type": "integer", "minimum": 0},
		"prompt":   map[string]any{"type": "string"},
		"imageUrl": map[string]any{"type": "string"},
		"kind":     map[string]any{"type": "string", "enum": []any{"choose", "enter"}},
		"choices": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"answer": map[string]any{"type": "string"},
	},
	"required": []any{"index", "prompt", "kind"},
}

var practiceSetSchema = &schema{
	name: "practice-set",
	definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    questionSchema,
			},
		},
		"required": []any{"questions"},
	},
}

var matchSnapshotSchema = &schema{
	name: "match-snapshot",
	definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sessionId":      map[string]any{"type": "string", "minLength": 1},
			"totalQuestions": map[string]any{"type": "integer", "minimum": 1},
			"cursor":         map[string]any{"type": "integer", "minimum": 0},
			"question":       questionSchema,
		},
		"required": []any{"sessionId", "totalQuestions", "question"},
	},
}

var submitResultSchema = &schema{
	name: "submit-result",
	definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect":     map[string]any{"type": "boolean"},
			"correctAnswer": map[string]any{"type": "string"},
			"finished":      map[string]any{"type": "boolean"},
			"nextQuestion":  questionSchema,
		},
		"required": []any{"isCorrect", "correctAnswer", "finished"},
	},
}

var summarySchema = &schema{
	name: "summary",
	definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":                map[string]any{"type": "integer"},
			"totalQuestions":       map[string]any{"type": "integer", "minimum": 0},
			"baseScore":            map[string]any{"type": "integer"},
			"difficultyMultiplier": map[string]any{"type": "number"},
			"answers": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"questionIndex": map[string]any{"type": "integer", "minimum": 0},
						"submitted":     map[string]any{"type": "string"},
						"isCorrect":     map[string]any{"type": "boolean"},
						"correctAnswer": map[string]any{"type": "string"},
						"timedOut":      map[string]any{"type": "boolean"},
					},
					"required": []any{"questionIndex", "isCorrect"},
				},
			},
		},
		"required": []any{"score", "totalQuestions", "answers"},
	},
}
