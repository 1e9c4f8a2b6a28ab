package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/vytor/mnemoflash/internal/logger"
)

const (
	SourceDictionary = "free-dictionary-api"
	SourceTTS        = "google-tts-fallback"
)

// Languages the pronunciation lookup knows about. Anything else is read
// with the English voice.
var ttsLanguages = map[string]bool{"en": true, "ru": true, "de": true, "fr": true, "es": true, "nl": true}

type Audio struct {
	AudioURL string `json:"audioUrl"`
	Source   string `json:"source"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type phonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type entry struct {
	Word      string     `json:"word"`
	Phonetics []phonetic `json:"phonetics"`
}

// Pronunciation finds an audio URL for word. English words are looked up in
// the dictionary; when that fails, or for other languages, a text-to-speech
// URL is returned instead.
func (c *Client) Pronunciation(ctx context.Context, word, language string) (Audio, error) {
	lang := language
	if !ttsLanguages[lang] {
		lang = "en"
	}

	if lang == "en" {
		audioURL, err := c.lookup(ctx, lang, word)
		if err != nil {
			logger.FromContext(ctx).WithPrefix("dictionary").WithField("word", word).Warn("dictionary lookup failed: %v", err)
		} else if audioURL != "" {
			return Audio{AudioURL: audioURL, Source: SourceDictionary}, nil
		}
	}

	return Audio{AudioURL: TTSURL(word, lang), Source: SourceTTS}, nil
}

// TTSURL returns a Google Translate text-to-speech URL for word.
func TTSURL(word, lang string) string {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", word)
	return "https://translate.google.com/translate_tts?" + q.Encode()
}

func (c *Client) lookup(ctx context.Context, lang, word string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("dictionary").WithField("word", word)
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, lang, url.PathEscape(word))

	log.Debug("fetching entry from: %s", endpoint)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	log.Debug("dictionary response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("dictionary status %d: %s", resp.StatusCode, string(body))
	}

	var entries []entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}

	ph, ok := lo.Find(entries[0].Phonetics, func(p phonetic) bool { return p.Audio != "" })
	if !ok {
		return "", nil
	}
	return ph.Audio, nil
}
