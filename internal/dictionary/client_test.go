package dictionary_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vytor/mnemoflash/internal/dictionary"
)

func TestPronunciation(t *testing.T) {
	c := qt.New(t)

	c.Run("first phonetic with audio wins", func(c *qt.C) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"word":"table","phonetics":[{"text":"/ˈteɪbəl/"},{"text":"/ˈteɪbəl/","audio":"https://audio/table-us.mp3"}]}]`))
		}))
		defer srv.Close()

		got, err := dictionary.New(srv.URL).Pronunciation(context.Background(), "table", "en")
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.DeepEquals, dictionary.Audio{AudioURL: "https://audio/table-us.mp3", Source: dictionary.SourceDictionary})
		c.Assert(gotPath, qt.Equals, "/en/table")
	})

	c.Run("unknown word falls back to text-to-speech", func(c *qt.C) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"title":"No Definitions Found"}`, http.StatusNotFound)
		}))
		defer srv.Close()

		got, err := dictionary.New(srv.URL).Pronunciation(context.Background(), "tablex", "en")
		c.Assert(err, qt.IsNil)
		c.Assert(got.Source, qt.Equals, dictionary.SourceTTS)
		c.Assert(got.AudioURL, qt.Equals, dictionary.TTSURL("tablex", "en"))
	})

	c.Run("server error falls back to text-to-speech", func(c *qt.C) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		}))
		defer srv.Close()

		got, err := dictionary.New(srv.URL).Pronunciation(context.Background(), "table", "en")
		c.Assert(err, qt.IsNil)
		c.Assert(got.Source, qt.Equals, dictionary.SourceTTS)
	})

	c.Run("other languages skip the dictionary", func(c *qt.C) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls++
		}))
		defer srv.Close()

		got, err := dictionary.New(srv.URL).Pronunciation(context.Background(), "стол", "ru")
		c.Assert(err, qt.IsNil)
		c.Assert(calls, qt.Equals, 0)
		c.Assert(got.AudioURL, qt.Equals, dictionary.TTSURL("стол", "ru"))
	})

	c.Run("unsupported language uses the English voice", func(c *qt.C) {
		got, err := dictionary.New("http://127.0.0.1:0").Pronunciation(context.Background(), "үстел", "kz")
		c.Assert(err, qt.IsNil)
		c.Assert(got.Source, qt.Equals, dictionary.SourceTTS)
		c.Assert(got.AudioURL, qt.Contains, "tl=en")
	})
}

func TestTTSURL(t *testing.T) {
	c := qt.New(t)
	c.Assert(dictionary.TTSURL("hello world", "de"), qt.Equals,
		"https://translate.google.com/translate_tts?client=tw-ob&ie=UTF-8&q=hello+world&tl=de")
}
