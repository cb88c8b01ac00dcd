package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
)

// Visualization is a generated rendering of the finished project.
type Visualization struct {
	ImageURL    string `json:"imageUrl"`
	ImageBase64 string `json:"imageBase64"`
}

type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// VisualizationPrompt describes the image to generate.
func (c *Client) VisualizationPrompt(projectType, style string) string {
	pt, st := projectType, style
	if c.labels != nil {
		pt, st = c.labels.Describe(projectType), c.labels.Style(style)
	}
	return fmt.Sprintf("Une visualisation professionnelle et réaliste d'un %s en %s, intégré dans le terrain existant. "+
		"Rendu photoréaliste, éclairage naturel, haute qualité architecturale, vue aérienne ou perspective professionnelle.", pt, st)
}

// Visualize generates a rendering of the project and returns it inline.
// The site photo is not sent to the image model; the prompt alone drives it.
func (c *Client) Visualize(ctx context.Context, projectType, style string) (*Visualization, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req := imageRequest{
		Model:   c.cfg.ImageModel,
		Prompt:  c.VisualizationPrompt(projectType, style),
		Size:    "1024x1024",
		Quality: "standard",
		N:       1,
	}
	var resp imageResponse
	if err := c.post(ctx, "/images/generations", req, &resp); err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}

	out := &Visualization{ImageURL: resp.Data[0].URL, ImageBase64: resp.Data[0].B64JSON}
	if out.ImageBase64 != "" {
		return out, nil
	}
	if out.ImageURL == "" {
		return nil, ErrEmptyResponse
	}

	data, err := c.download(ctx, out.ImageURL)
	if err != nil {
		return nil, err
	}
	out.ImageBase64 = base64.StdEncoding.EncodeToString(data)
	return out, nil
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Status: resp.StatusCode, Body: "image download failed"}
	}
	return io.ReadAll(io.LimitReader(resp.Body, 20<<20))
}
