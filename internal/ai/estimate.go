package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// EstimateContext is what the user tells us about the site next to the photo.
type EstimateContext struct {
	Surface      string `json:"surface,omitempty"`
	Materiaux    string `json:"materiaux,omitempty"`
	Localisation string `json:"localisation,omitempty"`
	Delai        string `json:"delai,omitempty"`
	Metier       string `json:"metier,omitempty"`
}

// Number accepts JSON numbers as well as numeric strings like "1 200,50".
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*n = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.NewReplacer(" ", "", "\u00a0", "", "€", "", ",", ".").Replace(raw)
		s = raw
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*n = Number(v)
	return nil
}

type Material struct {
	Nom      string `json:"nom"`
	Quantite string `json:"quantite"`
	Prix     Number `json:"prix"`
}

// UnmarshalJSON lets quantite be a number or a string.
func (m *Material) UnmarshalJSON(b []byte) error {
	var raw struct {
		Nom      string          `json:"nom"`
		Quantite json.RawMessage `json:"quantite"`
		Prix     Number          `json:"prix"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.Nom, m.Prix = raw.Nom, raw.Prix
	var s string
	if err := json.Unmarshal(raw.Quantite, &s); err == nil {
		m.Quantite = s
	} else {
		m.Quantite = strings.TrimSpace(string(raw.Quantite))
	}
	return nil
}

type CostBreakdown struct {
	Transport  Number `json:"transport"`
	MainOeuvre Number `json:"mainOeuvre"`
	Materiaux  Number `json:"materiaux"`
	Autres     Number `json:"autres"`
}

// Estimate is the structured answer the vision model is asked to produce.
type Estimate struct {
	TempsRealisation string        `json:"tempsRealisation"`
	Materiaux        []Material    `json:"materiaux"`
	NombreOuvriers   Number        `json:"nombreOuvriers"`
	CoutTotal        Number        `json:"coutTotal"`
	Marge            Number        `json:"marge"`
	Benefice         Number        `json:"benefice"`
	RepartitionCouts CostBreakdown `json:"repartitionCouts"`
	Recommandations  []string      `json:"recommandations"`
}

var estimatePrompt = template.Must(template.New("estimate").Parse(`Tu es un expert en estimation de chantiers de construction. Analyse cette image de chantier et génère une estimation détaillée en JSON avec la structure suivante:
{
  "tempsRealisation": "durée estimée (ex: '3 semaines')",
  "materiaux": [
    {"nom": "nom du matériau", "quantite": "quantité", "prix": nombre}
  ],
  "nombreOuvriers": nombre,
  "coutTotal": nombre,
  "marge": nombre,
  "benefice": nombre,
  "repartitionCouts": {
    "transport": nombre,
    "mainOeuvre": nombre,
    "materiaux": nombre,
    "autres": nombre
  },
  "recommandations": ["recommandation 1", "recommandation 2"]
}

Informations du chantier:
- Surface: {{or .Surface "Non spécifiée"}}
- Matériaux: {{or .Materiaux "Non spécifiés"}}
- Localisation: {{or .Localisation "Non spécifiée"}}
- Délai souhaité: {{or .Delai "Non spécifié"}}
- Métier: {{or .Metier "Non spécifié"}}

Génère une estimation réaliste basée sur l'image et les informations fournies. Les prix doivent être en euros.`))

// EstimatePrompt renders the instruction sent with the photo.
func EstimatePrompt(ec EstimateContext) string {
	var buf bytes.Buffer
	_ = estimatePrompt.Execute(&buf, ec)
	return buf.String()
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze asks the vision model for a cost estimate of the site in image.
func (c *Client) Analyze(ctx context.Context, image []byte, mimeType string, ec EstimateContext) (*Estimate, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	req := chatRequest{
		Model: c.cfg.VisionModel,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: EstimatePrompt(ec)},
				{Type: "image_url", ImageURL: &imageURL{
					URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
		MaxTokens:      2000,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return nil, fmt.Errorf("analyze image: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}

	var est Estimate
	if err := json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), &est); err != nil {
		return nil, fmt.Errorf("decode estimate: %w", err)
	}
	if est.Materiaux == nil {
		est.Materiaux = []Material{}
	}
	if est.Recommandations == nil {
		est.Recommandations = []string{}
	}
	return &est, nil
}

// stripFences removes a ```json ... ``` wrapper some models add.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
