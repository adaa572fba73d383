package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const progressDef = `{
	"type": "object",
	"required": ["topic_id", "current_difficulty", "questions_attempted", "questions_correct"],
	"properties": {
		"topic_id": {"type": "string", "minLength": 1},
		"current_difficulty": {"enum": ["beginner", "intermediate", "advanced", "expert"]},
		"questions_attempted": {"type": "integer", "minimum": 0},
		"questions_correct": {"type": "integer", "minimum": 0},
		"accuracy": {"type": "number", "minimum": 0, "maximum": 100},
		"total_xp_earned": {"type": "integer", "minimum": 0},
		"mastery_level": {"type": "integer", "minimum": 0, "maximum": 100}
	}
}`

const userDef = `{
	"type": "object",
	"required": ["id", "email", "level", "xp"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"email": {"type": "string"},
		"full_name": {"type": ["string", "null"]},
		"level": {"type": "integer", "minimum": 1},
		"xp": {"type": "integer", "minimum": 0},
		"streak": {"type": "integer", "minimum": 0}
	}
}`

// schemaDefs are the response shapes accepted at the service boundary.
// Unknown fields are allowed; missing or mistyped required fields are not.
var schemaDefs = map[string]string{
	"token": `{
		"type": "object",
		"required": ["access_token"],
		"properties": {"access_token": {"type": "string", "minLength": 1}}
	}`,
	"register": `{
		"type": "object",
		"properties": {"access_token": {"type": ["string", "null"]}}
	}`,
	"user": userDef,
	"question": `{
		"type": "object",
		"required": ["id", "question_type", "question_text"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"topic_id": {"type": ["string", "null"]},
			"question_type": {"enum": ["mcq", "snippet", "coding"]},
			"difficulty": {"enum": ["beginner", "intermediate", "advanced", "expert"]},
			"question_text": {"type": "string", "minLength": 1},
			"options": {
				"type": ["array", "null"],
				"items": {
					"type": "object",
					"required": ["id", "text"],
					"properties": {"id": {"type": "string"}, "text": {"type": "string"}}
				}
			},
			"code_snippet": {"type": ["string", "null"]},
			"starter_code": {"type": ["string", "null"]},
			"language": {"type": ["string", "null"]},
			"hints": {"type": ["array", "null"], "items": {"type": "string"}},
			"xp_reward": {"type": "integer", "minimum": 0}
		}
	}`,
	"submit": `{
		"type": "object",
		"required": ["evaluation"],
		"properties": {
			"evaluation": {
				"type": "object",
				"required": ["is_correct", "xp_earned"],
				"properties": {
					"is_correct": {"type": "boolean"},
					"score": {"type": "integer", "minimum": 0, "maximum": 100},
					"xp_earned": {"type": "integer", "minimum": 0},
					"mistakes": {
						"type": ["array", "null"],
						"items": {
							"type": "object",
							"properties": {
								"mistake_type": {"type": "string"},
								"description": {"type": "string"},
								"concept_gap": {"type": "string"},
								"suggestion": {"type": "string"}
							}
						}
					},
					"recommended_action": {"type": ["string", "null"]},
					"detailed_feedback": {"type": ["string", "null"]},
					"correct_answer": {"type": ["string", "null"]}
				}
			},
			"progress": {"anyOf": [{"type": "null"}, {"$ref": "#/$defs/progress"}]},
			"level_up": {
				"anyOf": [
					{"type": "null"},
					{
						"type": "object",
						"required": ["new_level"],
						"properties": {
							"new_level": {"type": "integer", "minimum": 2},
							"xp_required": {"type": "integer"},
							"rewards": {"type": "array", "items": {"type": "string"}},
							"message": {"type": "string"}
						}
					}
				]
			}
		},
		"$defs": {"progress": ` + progressDef + `}
	}`,
	"hint": `{
		"type": "object",
		"required": ["hint"],
		"properties": {
			"hint": {"type": "string"},
			"hints_remaining": {"type": "integer", "minimum": 0}
		}
	}`,
	"topic_progress": `{
		"type": "object",
		"required": ["progress"],
		"properties": {"progress": {"anyOf": [{"type": "null"}, {"$ref": "#/$defs/progress"}]}},
		"$defs": {"progress": ` + progressDef + `}
	}`,
	"user_progress": `{
		"type": "object",
		"required": ["topic_progress"],
		"properties": {
			"topic_progress": {"type": "array", "items": {"$ref": "#/$defs/progress"}},
			"total_questions": {"type": "integer", "minimum": 0},
			"overall_accuracy": {"type": "number"}
		},
		"$defs": {"progress": ` + progressDef + `}
	}`,
	"stats": `{
		"type": "object",
		"required": ["total_attempts", "correct_attempts"],
		"properties": {
			"total_attempts": {"type": "integer", "minimum": 0},
			"correct_attempts": {"type": "integer", "minimum": 0},
			"accuracy": {"type": "number"},
			"total_xp_earned": {"type": "integer", "minimum": 0},
			"mistake_breakdown": {"type": "object", "additionalProperties": {"type": "integer"}}
		}
	}`,
	"leaderboard": `{
		"type": "object",
		"required": ["leaderboard"],
		"properties": {
			"leaderboard": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["id", "xp"],
					"properties": {
						"id": {"type": "string"},
						"full_name": {"type": ["string", "null"]},
						"level": {"type": "integer"},
						"xp": {"type": "integer"},
						"streak": {"type": "integer"}
					}
				}
			}
		}
	}`,
	"courses": `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "name"],
			"properties": {
				"id": {"type": "string"},
				"name": {"type": "string"},
				"description": {"type": "string"},
				"total_topics": {"type": "integer"},
				"estimated_hours": {"type": "integer"}
			}
		}
	}`,
	"topics": `{
		"type": "object",
		"required": ["topics"],
		"properties": {
			"topics": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["id", "name"],
					"properties": {
						"id": {"type": "string"},
						"course_id": {"type": "string"},
						"name": {"type": "string"},
						"order": {"type": "integer"},
						"difficulty": {"enum": ["beginner", "intermediate", "advanced", "expert"]},
						"estimated_minutes": {"type": "integer"}
					}
				}
			}
		}
	}`,
}

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateResponse checks raw against the named schema and decodes it into
// out. Failures are *ErrInvalidResponse.
func validateResponse(name string, raw json.RawMessage, out any) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("invalid JSON: %w", err),
		}
	}

	compiled, err := getCompiledSchema(name)
	if err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("compile schema %q: %w", name, err),
		}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("schema validation failed: %w", err),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// getCompiledSchema returns a cached compiled schema or compiles and caches it.
func getCompiledSchema(name string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := schemaDefs[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
