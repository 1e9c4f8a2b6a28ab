package models

// Shapes exchanged with the generative language service. JSON names match
// the wire format the model is prompted to produce.

type PartOfSpeech string

const (
	POSNoun      PartOfSpeech = "noun"
	POSVerb      PartOfSpeech = "verb"
	POSAdjective PartOfSpeech = "adjective"
)

type SemanticClass string

const (
	SemanticObject  SemanticClass = "object"
	SemanticAction  SemanticClass = "action"
	SemanticQuality SemanticClass = "quality"
)

type WordAnalysis struct {
	NormalizedWord string        `json:"normalized_word"`
	POS            PartOfSpeech  `json:"pos" validate:"omitempty,oneof=noun verb adjective"`
	IPA            string        `json:"ipa"`
	Translation    string        `json:"translation"`
	BasicMeaning   string        `json:"basic_meaning"`
	SemanticClass  SemanticClass `json:"semantic_class" validate:"omitempty,oneof=object action quality"`
	ExampleUsage   string        `json:"example_usage"`
}

type PhoneticChunk struct {
	Chunk string `json:"chunk" validate:"required"`
	IPA   string `json:"ipa"`
}

type Phonetics struct {
	IPA    string          `json:"ipa"`
	Chunks []PhoneticChunk `json:"chunks" validate:"dive"`
}

// ChunkIPA returns the IPA recorded for chunk, or "" when unknown.
func (p Phonetics) ChunkIPA(chunk string) string {
	for _, c := range p.Chunks {
		if c.Chunk == chunk {
			return c.IPA
		}
	}
	return ""
}

type Frequency string

const (
	FrequencyHigh   Frequency = "high"
	FrequencyMedium Frequency = "medium"
	FrequencyLow    Frequency = "low"
)

type AnchorCandidate struct {
	Word               string    `json:"word"`
	PhoneticSimilarity float64   `json:"phonetic_similarity"`
	Imageable          bool      `json:"imageable"`
	Frequency          Frequency `json:"frequency"`
}

// ChunkCandidates holds the anchor candidates proposed for one chunk.
type ChunkCandidates struct {
	Chunk      string            `json:"chunk"`
	Candidates []AnchorCandidate `json:"candidates"`
}

// SelectedAnchor is the anchor chosen for a chunk, either automatically or by the user.
type SelectedAnchor struct {
	Chunk      string  `json:"chunk" validate:"required"`
	AnchorWord string  `json:"anchor_word" validate:"required"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
}

type BindingRelation string

const (
	RelationOn         BindingRelation = "on"
	RelationInside     BindingRelation = "inside"
	RelationAttachedTo BindingRelation = "attached_to"
	RelationHolding    BindingRelation = "holding"
	RelationWearing    BindingRelation = "wearing"
	RelationEmbeddedIn BindingRelation = "embedded_in"
	RelationLabelOn    BindingRelation = "label_on"
	RelationOrbiting   BindingRelation = "orbiting"
	RelationSittingOn  BindingRelation = "sitting_on"
	RelationStandingOn BindingRelation = "standing_on"
)

type Binding struct {
	Anchor   string          `json:"anchor"`
	Relation BindingRelation `json:"relation"`
	Target   string          `json:"target"`
}

type SceneStyle struct {
	Visual     string `json:"visual"`
	Background string `json:"background"`
	NoText     bool   `json:"no_text"`
}

type Scene struct {
	MainObject string     `json:"main_object"`
	Bindings   []Binding  `json:"bindings"`
	Style      SceneStyle `json:"style"`
}

type ImagePrompt struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
}

// ImageResult carries either a finished image or a rewritten prompt that
// the caller should generate from instead.
type ImageResult struct {
	ImageURL       string `json:"imageUrl,omitempty"`
	EnhancedPrompt string `json:"enhancedPrompt,omitempty"`
}

type AnalyzeRequest struct {
	Word             string `json:"word" validate:"required,max=64"`
	LearningLanguage string `json:"learningLanguage" validate:"required,language"`
	NativeLanguage   string `json:"nativeLanguage" validate:"required,language"`
}

type AnalyzeResult struct {
	Analysis  WordAnalysis `json:"analysis"`
	Phonetics Phonetics    `json:"phonetics"`
}

type ChunkingRequest struct {
	Word               string          `json:"word" validate:"required"`
	LearningLanguage   string          `json:"learningLanguage" validate:"required,language"`
	NativeLanguage     string          `json:"nativeLanguage" validate:"required,language"`
	CustomInstructions string          `json:"customInstructions" validate:"required"`
	CurrentChunks      []PhoneticChunk `json:"currentChunks"`
}

type AnchorsRequest struct {
	Word               string           `json:"word" validate:"required"`
	Phonetics          Phonetics        `json:"phonetics"`
	NativeLanguage     string           `json:"nativeLanguage" validate:"required,language"`
	CustomInstructions string           `json:"customInstructions,omitempty"`
	CurrentAnchors     []SelectedAnchor `json:"currentAnchors,omitempty"`
}

type AnchorsResult struct {
	Candidates []ChunkCandidates `json:"candidates"`
}

type SceneRequest struct {
	Word               string           `json:"word" validate:"required"`
	Analysis           WordAnalysis     `json:"analysis"`
	Anchors            []SelectedAnchor `json:"anchors" validate:"required,min=1,dive"`
	NativeLanguage     string           `json:"nativeLanguage" validate:"required,language"`
	CustomInstructions string           `json:"customInstructions,omitempty"`
	CurrentScene       *Scene           `json:"currentScene,omitempty"`
}

type SceneResult struct {
	Scene       Scene       `json:"scene"`
	ImagePrompt ImagePrompt `json:"imagePrompt"`
}

type ImageRequest struct {
	Prompt             string `json:"prompt" validate:"required"`
	NegativePrompt     string `json:"negativePrompt"`
	CustomInstructions string `json:"customInstructions,omitempty"`
}
