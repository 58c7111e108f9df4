package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var moneyAmountRe = regexp.MustCompile(amountAlt)

// Entity is one span tagged by the NER collaborator.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Tagger produces entities for a text. Implementations may call out
// over the network; a failed pass must not fail the pipeline.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Entity, error)
}

// HTTPTagger calls a spaCy-style tagging service over HTTP.
type HTTPTagger struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHTTPTagger(baseURL string) *HTTPTagger {
	return &HTTPTagger{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

type tagRequest struct {
	Text string `json:"text"`
}

type tagResponse struct {
	Ents []Entity `json:"ents"`
}

func (t *HTTPTagger) Tag(ctx context.Context, text string) ([]Entity, error) {
	body, err := json.Marshal(tagRequest{Text: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/tag", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tagger status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out tagResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Ents, nil
}

// applyEntities folds tagger output into the slots. Only gaps are
// filled; the regex pipeline always wins on conflict.
func applyEntities(ents []Entity, slots map[string]any) {
	for _, e := range ents {
		val := strings.ToLower(strings.TrimSpace(e.Text))
		if val == "" {
			continue
		}
		switch strings.ToUpper(e.Label) {
		case "ORG", "BRAND":
			if _, have := slots["brand"]; !have {
				slots["brand"] = val
			}
		case "MONEY":
			slots["price_seen"] = true
			_, haveMax := slots["price_max"]
			_, haveMin := slots["price_min"]
			if !haveMax && !haveMin {
				if tok := moneyAmountRe.FindString(val); tok != "" {
					if v, ok := parseAmount(tok); ok {
						slots["price_max"] = v
					}
				}
			}
		case "PRODUCT":
			if _, have := slots["product"]; !have {
				slots["product"] = val
			}
		}
	}
}
