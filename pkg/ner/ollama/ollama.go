package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"

	"github.com/confmine/confmine/internal/util"
	"github.com/confmine/confmine/pkg/ner"
)

// TaggerClient implements ner.Extractor using a locally-hosted Ollama model
// with JSON-schema constrained output.
type TaggerClient struct {
	model      string
	maxRetries int

	reqLock *semaphore.Weighted

	client *api.Client
}

// NewTaggerClientParams configures an Ollama-backed tagger.
type NewTaggerClientParams struct {
	Model   string
	BaseURL string
	APIKey  string

	MaxRetries            int
	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewTaggerClient creates a tagger backed by an Ollama server at BaseURL
// (or the default local server if empty).
func NewTaggerClient(params NewTaggerClientParams) (*TaggerClient, error) {
	var (
		u   *url.URL
		err error
	)
	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.APIKey,
			},
			rt: http.DefaultTransport,
		},
	}

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	return &TaggerClient{
		model:      params.Model,
		maxRetries: maxRetries,
		reqLock:    semaphore.NewWeighted(maxConcurrent),
		client:     api.NewClient(u, httpClient),
	}, nil
}

// Extract tags entity mentions in text and returns them in input order.
func (c *TaggerClient) Extract(ctx context.Context, text string) ([]ner.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	formatBytes, err := json.Marshal(ner.GenerateSchema(ner.TagResponse{}))
	if err != nil {
		return nil, err
	}

	systemPrompt := fmt.Sprintf(ner.TagPromptText, strings.Join(ner.TagTypes(), ","))
	stream := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Stream:  &stream,
		Format:  json.RawMessage(formatBytes),
		Options: map[string]any{"temperature": 0.0},
	}

	res, err := util.RetryWithContext(ctx, c.maxRetries, func(ctx context.Context) (ner.TagResponse, error) {
		var out ner.TagResponse

		var final api.ChatResponse
		if err := c.client.Chat(ctx, req, func(cr api.ChatResponse) error {
			final.Message.Content += cr.Message.Content
			return nil
		}); err != nil {
			return out, err
		}

		if err := ner.UnmarshalFlexible(final.Message.Content, &out); err != nil {
			return out, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	return res.Spans(), nil
}
