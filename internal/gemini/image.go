package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
)

const defaultNegativePrompt = "text, letters, watermark, blur"

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio"`
	NegativePrompt string `json:"negativePrompt"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

var errNoImage = errors.New("no image in response")

// PlaceholderURL is the image shown when no real image can be generated.
func PlaceholderURL(label string) string {
	return "https://placehold.co/512x512/e2e8f0/64748b?text=" + url.QueryEscape(label)
}

// GenerateImage returns either an image URL or, when custom instructions are
// given, an enhanced prompt to generate from instead. Imagen failures fall
// back to a placeholder image.
func (c *Client) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.ImageResult, error) {
	log := logger.FromContext(ctx).WithPrefix("gemini")

	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("missing prompt")
	}
	if !c.Configured() {
		log.Warn("no API key, using placeholder image")
		return &models.ImageResult{ImageURL: PlaceholderURL("Image\nGeneration")}, nil
	}

	if instructions := strings.TrimSpace(req.CustomInstructions); instructions != "" {
		var out struct {
			EnhancedPrompt string `json:"enhancedPrompt"`
		}
		err := c.generateJSON(ctx, "failed to customize image", "enhance", enhancePrompt{
			Prompt:       req.Prompt,
			Instructions: instructions,
		}, &out)
		if err != nil {
			return nil, err
		}
		if out.EnhancedPrompt != "" {
			return &models.ImageResult{EnhancedPrompt: out.EnhancedPrompt}, nil
		}
		log.Warn("model returned no enhanced prompt, generating from the current one")
	}

	imageURL, err := c.predict(ctx, req)
	if err != nil {
		log.Error("imagen failed, using placeholder: %v", err)
		return &models.ImageResult{ImageURL: PlaceholderURL("Mnemonic\nScene")}, nil
	}
	return &models.ImageResult{ImageURL: imageURL}, nil
}

func (c *Client) predict(ctx context.Context, req models.ImageRequest) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("gemini").WithField("model", c.imagenModel)

	negative := req.NegativePrompt
	if negative == "" {
		negative = defaultNegativePrompt
	}
	body := predictRequest{
		Instances: []predictInstance{{Prompt: req.Prompt}},
		Parameters: predictParameters{
			SampleCount:    1,
			AspectRatio:    "1:1",
			NegativePrompt: negative,
		},
	}

	start := time.Now()
	var resp predictResponse
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.endpoint(c.imagenModel, "predict"), c.headers(), body, &resp); err != nil {
		return "", err
	}
	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return "", errNoImage
	}
	mime := resp.Predictions[0].MimeType
	if mime == "" {
		mime = "image/png"
	}
	log.Info("image generated in %v", time.Since(start))
	return "data:" + mime + ";base64," + resp.Predictions[0].BytesBase64Encoded, nil
}
