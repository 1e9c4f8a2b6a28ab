package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vytor/mnemoflash/internal/gemini"
	"github.com/vytor/mnemoflash/internal/models"
)

// textResponse wraps text the way generateContent returns it.
func textResponse(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(b)
}

type recorded struct {
	path  string
	query string
	key   string
	body  map[string]any
	calls int
}

func newServer(c *qt.C, status int, reply func(path string) string) (*httptest.Server, *recorded) {
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.calls++
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.key = r.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &rec.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply(r.URL.Path)))
	}))
	c.Cleanup(srv.Close)
	return srv, rec
}

func newClient(srvURL, key string) *gemini.Client {
	return gemini.New(gemini.Options{APIKey: key, BaseURL: srvURL, Model: "gemini-test", ImagenModel: "imagen-test"})
}

func promptText(rec *recorded) string {
	contents := rec.body["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	return parts[0].(map[string]any)["text"].(string)
}

const analysisJSON = `{
  "analysis": {"normalized_word": "table", "pos": "noun", "ipa": "ˈteɪbəl", "translation": "стол",
    "basic_meaning": "furniture", "semantic_class": "object", "example_usage": "A table."},
  "phonetics": {"ipa": "ˈteɪbəl", "chunks": [{"chunk": "tei", "ipa": "teɪ"}, {"chunk": "bl", "ipa": "bəl"}]}
}`

func TestAnalyze(t *testing.T) {
	c := qt.New(t)

	c.Run("decodes analysis and sends prompt to the configured model", func(c *qt.C) {
		srv, rec := newServer(c, http.StatusOK, func(string) string { return textResponse(analysisJSON) })

		got, err := newClient(srv.URL, "k-123").Analyze(context.Background(), models.AnalyzeRequest{
			Word: "table", LearningLanguage: "en", NativeLanguage: "ru",
		})
		c.Assert(err, qt.IsNil)
		c.Assert(got.Analysis.Translation, qt.Equals, "стол")
		c.Assert(got.Analysis.POS, qt.Equals, models.POSNoun)
		c.Assert(got.Phonetics.Chunks, qt.HasLen, 2)

		c.Assert(rec.path, qt.Equals, "/models/gemini-test:generateContent")
		c.Assert(rec.key, qt.Equals, "k-123")
		c.Assert(rec.query, qt.Equals, "")
		c.Assert(promptText(rec), qt.Contains, `Analyze the English word "table"`)
		c.Assert(promptText(rec), qt.Contains, "translation to Russian")
		cfg := rec.body["generationConfig"].(map[string]any)
		c.Assert(cfg["responseMimeType"], qt.Equals, "application/json")
	})

	c.Run("answer wrapped in a code fence is accepted", func(c *qt.C) {
		srv, _ := newServer(c, http.StatusOK, func(string) string {
			return textResponse("Here you go:\n```json\n" + analysisJSON + "\n```")
		})

		got, err := newClient(srv.URL, "k").Analyze(context.Background(), models.AnalyzeRequest{
			Word: "table", LearningLanguage: "en", NativeLanguage: "ru",
		})
		c.Assert(err, qt.IsNil)
		c.Assert(got.Analysis.NormalizedWord, qt.Equals, "table")
	})

	c.Run("invalid JSON is reported", func(c *qt.C) {
		srv, _ := newServer(c, http.StatusOK, func(string) string { return textResponse("not json") })

		got, err := newClient(srv.URL, "k").Analyze(context.Background(), models.AnalyzeRequest{
			Word: "table", LearningLanguage: "en", NativeLanguage: "ru",
		})
		c.Assert(got, qt.IsNil)
		c.Assert(err, qt.ErrorMatches, "failed to analyze word: invalid JSON.*")
	})

	c.Run("missing API key makes no request", func(c *qt.C) {
		srv, rec := newServer(c, http.StatusOK, func(string) string { return textResponse(analysisJSON) })

		_, err := newClient(srv.URL, "").Analyze(context.Background(), models.AnalyzeRequest{Word: "table"})
		c.Assert(err, qt.ErrorIs, gemini.ErrNotConfigured)
		c.Assert(rec.calls, qt.Equals, 0)
	})
}

func TestUpstreamErrors(t *testing.T) {
	c := qt.New(t)

	c.Run("transport failure does not expose the key", func(c *qt.C) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		const key = "SECRET-KEY-123"
		_, err := newClient(addr, key).Analyze(context.Background(), models.AnalyzeRequest{
			Word: "table", LearningLanguage: "en", NativeLanguage: "ru",
		})
		c.Assert(err, qt.ErrorMatches, "failed to analyze word: .*")
		c.Assert(strings.Contains(err.Error(), key), qt.IsFalse)
		c.Assert(strings.Contains(err.Error(), addr), qt.IsFalse)
	})

	c.Run("403 maps to disabled API", func(c *qt.C) {
		srv, _ := newServer(c, http.StatusForbidden, func(string) string { return `{"error":{"status":"PERMISSION_DENIED"}}` })

		_, err := newClient(srv.URL, "k").Analyze(context.Background(), models.AnalyzeRequest{Word: "table"})
		c.Assert(err, qt.ErrorIs, gemini.ErrAPIDisabled)
		c.Assert(err.Error(), qt.Contains, "Generative Language API is not enabled")
	})

	c.Run("SERVICE_DISABLED in the body maps to disabled API", func(c *qt.C) {
		srv, _ := newServer(c, http.StatusBadRequest, func(string) string { return `{"error":{"details":[{"reason":"SERVICE_DISABLED"}]}}` })

		_, err := newClient(srv.URL, "k").BuildScene(context.Background(), models.SceneRequest{Word: "table"})
		c.Assert(err, qt.ErrorIs, gemini.ErrAPIDisabled)
	})

	c.Run("other statuses keep the operation message", func(c *qt.C) {
		srv, _ := newServer(c, http.StatusInternalServerError, func(string) string { return `boom` })

		_, err := newClient(srv.URL, "k").GenerateAnchors(context.Background(), models.AnchorsRequest{Word: "table"})
		c.Assert(err, qt.ErrorMatches, "failed to generate anchors: HTTP 500: boom")
		var apiErr *gemini.APIError
		c.Assert(errors.As(err, &apiErr), qt.IsTrue)
		c.Assert(apiErr.StatusCode, qt.Equals, http.StatusInternalServerError)
	})
}

func TestCustomizeChunking(t *testing.T) {
	c := qt.New(t)
	srv, rec := newServer(c, http.StatusOK, func(string) string {
		return textResponse(`{"phonetics":{"ipa":"ˈteɪbəl","chunks":[{"chunk":"ta","ipa":"teɪ"},{"chunk":"ble","ipa":"bəl"}]}}`)
	})

	got, err := newClient(srv.URL, "k").CustomizeChunking(context.Background(), models.ChunkingRequest{
		Word:               "table",
		LearningLanguage:   "en",
		NativeLanguage:     "ru",
		CustomInstructions: "split after the vowel",
		CurrentChunks:      []models.PhoneticChunk{{Chunk: "tei"}, {Chunk: "bl"}},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(got.Chunks[0].Chunk, qt.Equals, "ta")
	c.Assert(promptText(rec), qt.Contains, "Current chunks: tei, bl")
	c.Assert(promptText(rec), qt.Contains, "Custom instructions: split after the vowel")
}

func TestGenerateAnchors_Prompt(t *testing.T) {
	c := qt.New(t)
	srv, rec := newServer(c, http.StatusOK, func(string) string {
		return textResponse(`{"candidates":[{"chunk":"tei","candidates":[{"word":"тей","phonetic_similarity":0.9,"imageable":true,"frequency":"low"}]}]}`)
	})

	got, err := newClient(srv.URL, "k").GenerateAnchors(context.Background(), models.AnchorsRequest{
		Word:               "table",
		Phonetics:          models.Phonetics{Chunks: []models.PhoneticChunk{{Chunk: "tei", IPA: "teɪ"}}},
		NativeLanguage:     "ru",
		CustomInstructions: "animals only",
		CurrentAnchors:     []models.SelectedAnchor{{Chunk: "tei", AnchorWord: "тень"}},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(got.Candidates[0].Candidates[0].PhoneticSimilarity, qt.Equals, 0.9)

	prompt := promptText(rec)
	c.Assert(prompt, qt.Contains, `Chunk 1: "tei" (IPA: teɪ)`)
	c.Assert(prompt, qt.Contains, `- "tei" -> "тень"`)
	c.Assert(prompt, qt.Contains, "5. Follow these additional requirements: animals only")
	c.Assert(prompt, qt.Contains, "words in Russian")
}

func TestGenerateImage(t *testing.T) {
	c := qt.New(t)

	c.Run("imagen bytes become a data URL", func(c *qt.C) {
		srv, rec := newServer(c, http.StatusOK, func(string) string {
			return `{"predictions":[{"bytesBase64Encoded":"QUJD"}]}`
		})

		got, err := newClient(srv.URL, "k").GenerateImage(context.Background(), models.ImageRequest{Prompt: "a table", NegativePrompt: "text"})
		c.Assert(err, qt.IsNil)
		c.Assert(got.ImageURL, qt.Equals, "data:image/png;base64,QUJD")
		c.Assert(got.EnhancedPrompt, qt.Equals, "")
		c.Assert(rec.path, qt.Equals, "/models/imagen-test:predict")
		params := rec.body["parameters"].(map[string]any)
		c.Assert(params["aspectRatio"], qt.Equals, "1:1")
		c.Assert(params["negativePrompt"], qt.Equals, "text")
	})

	c.Run("imagen failure falls back to a placeholder", func(c *qt.C) {
		srv, _ := newServer(c, http.StatusInternalServerError, func(string) string { return "down" })

		got, err := newClient(srv.URL, "k").GenerateImage(context.Background(), models.ImageRequest{Prompt: "a table"})
		c.Assert(err, qt.IsNil)
		c.Assert(strings.HasPrefix(got.ImageURL, "https://placehold.co/"), qt.IsTrue)
	})

	c.Run("no API key returns a placeholder without calling out", func(c *qt.C) {
		srv, rec := newServer(c, http.StatusOK, func(string) string { return "{}" })

		got, err := newClient(srv.URL, "").GenerateImage(context.Background(), models.ImageRequest{Prompt: "a table"})
		c.Assert(err, qt.IsNil)
		c.Assert(got.ImageURL, qt.Equals, gemini.PlaceholderURL("Image\nGeneration"))
		c.Assert(rec.calls, qt.Equals, 0)
	})

	c.Run("custom instructions return an enhanced prompt", func(c *qt.C) {
		srv, rec := newServer(c, http.StatusOK, func(string) string {
			return textResponse(`{"enhancedPrompt":"a bright red table"}`)
		})

		got, err := newClient(srv.URL, "k").GenerateImage(context.Background(), models.ImageRequest{
			Prompt: "a table", CustomInstructions: "make it red",
		})
		c.Assert(err, qt.IsNil)
		c.Assert(got.EnhancedPrompt, qt.Equals, "a bright red table")
		c.Assert(got.ImageURL, qt.Equals, "")
		c.Assert(rec.path, qt.Equals, "/models/gemini-test:generateContent")
		c.Assert(promptText(rec), qt.Contains, "make it red")
	})

	c.Run("empty prompt is rejected", func(c *qt.C) {
		_, err := newClient("http://unused", "k").GenerateImage(context.Background(), models.ImageRequest{})
		c.Assert(err, qt.IsNotNil)
	})
}
