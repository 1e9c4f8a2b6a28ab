package gemini

import (
	"strings"
	"text/template"

	"github.com/vytor/mnemoflash/internal/models"
)

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`
{{define "chunkingRules"}}Rules for phonetic chunking:
- Each chunk should be 1-3 syllables
- Chunks must be continuous and pronounceable
- Chunks should be maximally distinct from each other
- For short words (1-2 syllables), use the whole word as one chunk{{end}}

{{define "analyze"}}You are a linguistic analysis system for a mnemonic learning app.

Analyze the {{.Learning}} word "{{.Word}}" and provide:
1. Word analysis (normalized form, part of speech, IPA transcription, translation to {{.Native}}, basic meaning, semantic class, example usage)
2. Phonetic chunking (split into 1-3 pronounceable segments for mnemonic purposes)

{{template "chunkingRules"}}

Return a JSON object with this exact structure:
{
  "analysis": {
    "normalized_word": "string - the normalized form of the word",
    "pos": "noun | verb | adjective",
    "ipa": "string - IPA transcription",
    "translation": "string - translation to {{.Native}}",
    "basic_meaning": "string - simple explanation of the meaning",
    "semantic_class": "object | action | quality",
    "example_usage": "string - example sentence in {{.Learning}}"
  },
  "phonetics": {
    "ipa": "string - full IPA",
    "chunks": [{"chunk": "string - the text chunk", "ipa": "string - IPA for this chunk"}]
  }
}

Only return valid JSON, no additional text.{{end}}

{{define "chunking"}}You are a phonetic chunking system for a mnemonic learning app.

Analyze the {{.Learning}} word "{{.Word}}" and split it into phonetic chunks for mnemonic purposes.
{{if .Chunks}}
Current chunks: {{.Chunks}}
{{end}}
Custom instructions: {{.Instructions}}

{{template "chunkingRules"}}
- Additional requirements: {{.Instructions}}

Return a JSON object with this structure:
{
  "phonetics": {
    "ipa": "string - full IPA transcription",
    "chunks": [{"chunk": "string - the text chunk", "ipa": "string - IPA for this chunk"}]
  }
}

Only return valid JSON, no additional text.{{end}}

{{define "anchors"}}You are a phonetic association generator for a mnemonic learning app.

For the word "{{.Word}}", generate phonetically similar words in {{.Native}} for each chunk:

{{range $i, $c := .Phonetics.Chunks}}Chunk {{inc $i}}: "{{$c.Chunk}}" (IPA: {{$c.IPA}})
{{end}}{{if .Current}}
Current anchors:
{{range .Current}}- "{{.Chunk}}" -> "{{.AnchorWord}}"
{{end}}{{end}}{{if .Instructions}}
Custom instructions: {{.Instructions}}
{{end}}
For each chunk, find 3-5 words in {{.Native}} that:
1. Sound similar to the chunk (phonetic similarity is most important)
2. Are concrete, easily visualizable nouns (not abstract concepts)
3. Are common, familiar words (high frequency)
4. Are distinct from each other{{if .Instructions}}
5. Follow these additional requirements: {{.Instructions}}{{end}}

Score each candidate on phonetic_similarity from 0.0 to 1.0 (1.0 = perfect match).

Return a JSON object with this structure:
{
  "candidates": [
    {
      "chunk": "string - the original chunk",
      "candidates": [
        {"word": "string - {{.Native}} word", "phonetic_similarity": 0.0, "imageable": true, "frequency": "high | medium | low"}
      ]
    }
  ]
}

Sort candidates by phonetic_similarity (highest first).
Only return valid JSON, no additional text.{{end}}

{{define "scene"}}You are a mnemonic scene builder for a vocabulary learning app.

Build a visual scene that connects these elements:
- Target word: "{{.Word}}" ({{.Analysis.POS}})
- Meaning: "{{.Analysis.Translation}}" ({{.Analysis.BasicMeaning}})
- Phonetic anchors:
{{range .Anchors}}"{{.Chunk}}" -> {{$.Native}} word: "{{.AnchorWord}}"
{{end}}{{with .Current}}
Current scene:
Main object: {{.MainObject}}
Bindings: {{range $i, $b := .Bindings}}{{if $i}}, {{end}}{{$b.Anchor}} {{$b.Relation}} {{$b.Target}}{{end}}
{{end}}{{if .Instructions}}
Custom instructions: {{.Instructions}}
{{end}}
Scene building rules:
1. The main object represents the MEANING of the word (translation)
2. Each anchor word must be physically connected to the main object
3. Use spatial relationships: on, inside, attached_to, holding, wearing, sitting_on, standing_on
4. The scene must be visually coherent (all elements in one unified image)
5. Keep it simple - one main scene, clear relationships
6. No abstract symbols, only concrete objects{{if .Instructions}}
7. Follow these custom requirements: {{.Instructions}}{{end}}

Return a JSON object with this structure:
{
  "scene": {
    "main_object": "string - the visual representation of the word meaning",
    "bindings": [{"anchor": "string - the {{.Native}} anchor word", "relation": "string - spatial relationship", "target": "string - what it relates to"}],
    "style": {"visual": "clean, realistic 3D", "background": "simple", "no_text": true}
  },
  "imagePrompt": {
    "prompt": "string - detailed image generation prompt in English, describing the scene",
    "negative_prompt": "text, letters, watermark, blur, multiple scenes, abstract symbols"
  }
}

The image prompt should be in English and describe the scene vividly for an image generation model.
Only return valid JSON, no additional text.{{end}}

{{define "enhance"}}You rewrite prompts for an image generation model used in a mnemonic learning app.

Current prompt:
{{.Prompt}}

Change requested by the user:
{{.Instructions}}

Keep every object and spatial relationship of the current prompt unless the change asks otherwise. Describe one coherent scene in English, with no text or letters in the image.

Return a JSON object with this structure:
{"enhancedPrompt": "string - the rewritten prompt"}

Only return valid JSON, no additional text.{{end}}
`))

type analyzePrompt struct {
	Word     string
	Learning string
	Native   string
}

type chunkingPrompt struct {
	Word         string
	Learning     string
	Chunks       string
	Instructions string
}

type anchorsPrompt struct {
	Word         string
	Native       string
	Phonetics    models.Phonetics
	Current      []models.SelectedAnchor
	Instructions string
}

type scenePrompt struct {
	Word         string
	Native       string
	Analysis     models.WordAnalysis
	Anchors      []models.SelectedAnchor
	Current      *models.Scene
	Instructions string
}

type enhancePrompt struct {
	Prompt       string
	Instructions string
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
